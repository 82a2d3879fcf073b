package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	client.ID = uuid.New()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	query := `INSERT INTO clients (id, tenant_id, company_name, contact_name, contact_email, phone,
		address, linked_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		client.ID, client.TenantID, client.CompanyName, client.ContactName, client.ContactEmail,
		client.Phone, client.Address, client.LinkedUserID, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND tenant_id = $2", clientID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Client, error) {
	clients := []domain.Client{}
	err := r.db.SelectContext(ctx, &clients,
		"SELECT * FROM clients WHERE tenant_id = $1 ORDER BY company_name ASC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.List: %w", err)
	}
	return clients, nil
}

// Update writes contact fields. The link pointer is only changed by LinkUser/UnlinkUser.
func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	query := `UPDATE clients SET company_name = $1, contact_name = $2, contact_email = $3, phone = $4,
		address = $5, updated_at = $6 WHERE id = $7 AND tenant_id = $8`
	result, err := r.db.ExecContext(ctx, query,
		client.CompanyName, client.ContactName, client.ContactEmail, client.Phone, client.Address,
		client.UpdatedAt, client.ID, client.TenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the client and clears the linked user's pointer in the same transaction.
func (r *clientRepo) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET linked_client_id = NULL, updated_at = $1
		 WHERE tenant_id = $2 AND linked_client_id = $3`,
		time.Now().UTC(), tenantID, clientID)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete clear user link: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1 AND tenant_id = $2", clientID, tenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *clientRepo) LinkUser(ctx context.Context, tenantID, clientID, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clientRepo.LinkUser begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var client domain.Client
	err = tx.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND tenant_id = $2 FOR UPDATE", clientID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.LinkUser lock client: %w", err)
	}

	var user domain.User
	err = tx.GetContext(ctx, &user,
		"SELECT * FROM users WHERE id = $1 AND tenant_id = $2 FOR UPDATE", userID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.LinkUser lock user: %w", err)
	}

	if client.LinkedUserID != nil && *client.LinkedUserID != userID {
		return domain.ErrAlreadyLinked
	}
	if user.LinkedClientID != nil && *user.LinkedClientID != clientID {
		return domain.ErrAlreadyLinked
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE clients SET linked_user_id = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4",
		userID, now, clientID, tenantID); err != nil {
		return fmt.Errorf("clientRepo.LinkUser update client: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET linked_client_id = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4",
		clientID, now, userID, tenantID); err != nil {
		return fmt.Errorf("clientRepo.LinkUser update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clientRepo.LinkUser commit: %w", err)
	}
	return nil
}

func (r *clientRepo) UnlinkUser(ctx context.Context, tenantID, clientID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clientRepo.UnlinkUser begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var client domain.Client
	err = tx.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND tenant_id = $2 FOR UPDATE", clientID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.UnlinkUser lock client: %w", err)
	}
	if client.LinkedUserID == nil {
		return domain.ErrClientNotLinked
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE clients SET linked_user_id = NULL, updated_at = $1 WHERE id = $2 AND tenant_id = $3",
		now, clientID, tenantID); err != nil {
		return fmt.Errorf("clientRepo.UnlinkUser update client: %w", err)
	}
	// Only clear the user side if it still points back at this client.
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET linked_client_id = NULL, updated_at = $1
		 WHERE id = $2 AND tenant_id = $3 AND linked_client_id = $4`,
		now, *client.LinkedUserID, tenantID, clientID); err != nil {
		return fmt.Errorf("clientRepo.UnlinkUser update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clientRepo.UnlinkUser commit: %w", err)
	}
	return nil
}

func (r *clientRepo) ClearUserLink(ctx context.Context, tenantID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET linked_client_id = NULL, updated_at = $1 WHERE id = $2 AND tenant_id = $3",
		time.Now().UTC(), userID, tenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.ClearUserLink: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepo) ClearClientLink(ctx context.Context, tenantID, clientID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE clients SET linked_user_id = NULL, updated_at = $1 WHERE id = $2 AND tenant_id = $3",
		time.Now().UTC(), clientID, tenantID)
	if err != nil {
		return fmt.Errorf("clientRepo.ClearClientLink: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
