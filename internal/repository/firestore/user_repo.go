package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

type userDoc struct {
	TenantID       string    `firestore:"tenant_id"`
	IdentityUID    string    `firestore:"identity_uid"`
	Role           string    `firestore:"role"`
	DisplayName    string    `firestore:"display_name"`
	Email          string    `firestore:"email"`
	EmailLower     string    `firestore:"email_lower"`
	Status         string    `firestore:"status"`
	LinkedClientID *string   `firestore:"linked_client_id"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		TenantID:       u.TenantID.String(),
		IdentityUID:    u.IdentityUID,
		Role:           string(u.Role),
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		EmailLower:     strings.ToLower(u.Email),
		Status:         string(u.Status),
		LinkedClientID: optIDString(u.LinkedClientID),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func decodeUser(snap *gcfs.DocumentSnapshot) (domain.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:             parseID(snap.Ref.ID),
		TenantID:       parseID(doc.TenantID),
		IdentityUID:    doc.IdentityUID,
		Role:           domain.UserRole(doc.Role),
		DisplayName:    doc.DisplayName,
		Email:          doc.Email,
		Status:         domain.UserStatus(doc.Status),
		LinkedClientID: parseOptID(doc.LinkedClientID),
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

type userRepo struct {
	client *gcfs.Client
}

// NewUserRepo creates a Firestore-backed UserRepository.
func NewUserRepo(client *gcfs.Client) port.UserRepository {
	return &userRepo{client: client}
}

func (r *userRepo) col(tenantID uuid.UUID) *gcfs.CollectionRef {
	return tenantCol(r.client, tenantID, colUsers)
}

// Create checks email and identity uniqueness inside the transaction that writes the user.
func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	col := r.col(user.TenantID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		dupEmail, err := tx.Documents(col.Where("email_lower", "==", strings.ToLower(user.Email)).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		dupUID, err := tx.Documents(col.Where("identity_uid", "==", user.IdentityUID).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(dupEmail) > 0 || len(dupUID) > 0 {
			return domain.ErrDuplicateEmail
		}
		return tx.Create(col.Doc(user.ID.String()), toUserDoc(user))
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("userRepo.Create: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	snap, err := r.col(tenantID).Doc(userID.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	user, err := decodeUser(snap)
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByID decode: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByIdentityUID(ctx context.Context, tenantID uuid.UUID, uid string) (*domain.User, error) {
	users, err := collect(r.col(tenantID).Where("identity_uid", "==", uid).Limit(1).Documents(ctx), decodeUser)
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByIdentityUID: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID, f port.UserFilter) ([]domain.User, error) {
	q := r.col(tenantID).Query
	if f.Role != "" {
		q = q.Where("role", "==", string(f.Role))
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	users, err := collect(q.Documents(ctx), decodeUser)
	if err != nil {
		return nil, fmt.Errorf("userRepo.List: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].DisplayName < users[j].DisplayName
	})
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := r.col(user.TenantID).Doc(user.ID.String()).Update(ctx, []gcfs.Update{
		{Path: "display_name", Value: user.DisplayName},
		{Path: "email", Value: user.Email},
		{Path: "email_lower", Value: strings.ToLower(user.Email)},
		{Path: "role", Value: string(user.Role)},
		{Path: "status", Value: string(user.Status)},
		{Path: "updated_at", Value: user.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("userRepo.Update: %w", err)
	}
	return nil
}
