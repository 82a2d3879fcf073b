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

type brandingDoc struct {
	BusinessName   string    `firestore:"business_name"`
	PrimaryColor   string    `firestore:"primary_color"`
	SecondaryColor string    `firestore:"secondary_color"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

type brandingRepo struct {
	client *gcfs.Client
}

// NewBrandingRepo creates a Firestore-backed BrandingRepository. Branding is a
// single document at tenants/{tenantID}/settings/branding.
func NewBrandingRepo(client *gcfs.Client) port.BrandingRepository {
	return &brandingRepo{client: client}
}

func (r *brandingRepo) ref(tenantID uuid.UUID) *gcfs.DocumentRef {
	return tenantCol(r.client, tenantID, colSettings).Doc(docBranding)
}

func (r *brandingRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantBranding, error) {
	snap, err := r.ref(tenantID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("brandingRepo.Get: %w", err)
	}
	var doc brandingDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("brandingRepo.Get decode: %w", err)
	}
	return &domain.TenantBranding{
		TenantID:       tenantID,
		BusinessName:   doc.BusinessName,
		PrimaryColor:   doc.PrimaryColor,
		SecondaryColor: doc.SecondaryColor,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (r *brandingRepo) Save(ctx context.Context, b *domain.TenantBranding) error {
	b.UpdatedAt = time.Now().UTC()
	_, err := r.ref(b.TenantID).Set(ctx, brandingDoc{
		BusinessName:   b.BusinessName,
		PrimaryColor:   b.PrimaryColor,
		SecondaryColor: b.SecondaryColor,
		UpdatedAt:      b.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("brandingRepo.Save: %w", err)
	}
	return nil
}
