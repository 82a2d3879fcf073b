package firestore

import (
	"context"
	"fmt"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

type tenantDoc struct {
	Name      string    `firestore:"name"`
	IsActive  bool      `firestore:"is_active"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type tenantRepo struct {
	client *gcfs.Client
}

// NewTenantRepo creates a Firestore-backed TenantRepository.
func NewTenantRepo(client *gcfs.Client) port.TenantRepository {
	return &tenantRepo{client: client}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	tenant.ID = uuid.New()
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	doc := tenantDoc{Name: tenant.Name, IsActive: tenant.IsActive, CreatedAt: now, UpdatedAt: now}
	if _, err := tenantRef(r.client, tenant.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("tenantRepo.Create: %w", err)
	}
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	snap, err := tenantRef(r.client, id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", err)
	}
	var doc tenantDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("tenantRepo.GetByID decode: %w", err)
	}
	return &domain.Tenant{
		ID:        id,
		Name:      doc.Name,
		IsActive:  doc.IsActive,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()
	_, err := tenantRef(r.client, tenant.ID).Update(ctx, []gcfs.Update{
		{Path: "name", Value: tenant.Name},
		{Path: "is_active", Value: tenant.IsActive},
		{Path: "updated_at", Value: tenant.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("tenantRepo.Update: %w", err)
	}
	return nil
}
