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

type brandingRepo struct {
	db *sqlx.DB
}

// NewBrandingRepo creates a new PostgreSQL-backed BrandingRepository.
func NewBrandingRepo(db *sqlx.DB) port.BrandingRepository {
	return &brandingRepo{db: db}
}

func (r *brandingRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantBranding, error) {
	var b domain.TenantBranding
	err := r.db.GetContext(ctx, &b, "SELECT * FROM tenant_branding WHERE tenant_id = $1", tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("brandingRepo.Get: %w", err)
	}
	return &b, nil
}

// Save overwrites the tenant's branding wholesale.
func (r *brandingRepo) Save(ctx context.Context, b *domain.TenantBranding) error {
	b.UpdatedAt = time.Now().UTC()
	query := `INSERT INTO tenant_branding (tenant_id, business_name, primary_color, secondary_color, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		b.TenantID, b.BusinessName, b.PrimaryColor, b.SecondaryColor, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("brandingRepo.Save: %w", err)
	}
	return nil
}
