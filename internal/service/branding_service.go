package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// SaveBrandingInput is the DTO for overwriting tenant branding.
type SaveBrandingInput struct {
	BusinessName   string `json:"business_name" binding:"required"`
	PrimaryColor   string `json:"primary_color" binding:"required"`
	SecondaryColor string `json:"secondary_color" binding:"required"`
}

// BrandingService defines the tenant branding contract.
type BrandingService interface {
	Get(ctx context.Context, actor Actor) (*domain.TenantBranding, error)
	Save(ctx context.Context, actor Actor, input SaveBrandingInput) (*domain.TenantBranding, error)
}

type brandingService struct {
	brandingRepo port.BrandingRepository
	tenantRepo   port.TenantRepository
}

// NewBrandingService creates a new BrandingService implementation.
func NewBrandingService(brandingRepo port.BrandingRepository, tenantRepo port.TenantRepository) BrandingService {
	return &brandingService{brandingRepo: brandingRepo, tenantRepo: tenantRepo}
}

func (s *brandingService) Get(ctx context.Context, actor Actor) (*domain.TenantBranding, error) {
	return loadBranding(ctx, s.brandingRepo, s.tenantRepo, actor.TenantID)
}

func (s *brandingService) Save(ctx context.Context, actor Actor, input SaveBrandingInput) (*domain.TenantBranding, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", domain.ErrInvalidInput)
	}
	for _, c := range []string{input.PrimaryColor, input.SecondaryColor} {
		if !hexColorRe.MatchString(c) {
			return nil, fmt.Errorf("%w: color %q must be #RRGGBB", domain.ErrInvalidInput, c)
		}
	}

	b := &domain.TenantBranding{
		TenantID:       actor.TenantID,
		BusinessName:   name,
		PrimaryColor:   strings.ToUpper(input.PrimaryColor),
		SecondaryColor: strings.ToUpper(input.SecondaryColor),
	}
	if err := s.brandingRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	log.Printf("brandingService.Save: tenant %s branding updated by %s", actor.TenantID, actor.UserID)
	return b, nil
}

// loadBranding returns the saved branding, or defaults named after the tenant.
func loadBranding(ctx context.Context, brandingRepo port.BrandingRepository, tenantRepo port.TenantRepository, tenantID uuid.UUID) (*domain.TenantBranding, error) {
	b, err := brandingRepo.Get(ctx, tenantID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	tenant, err := tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return domain.DefaultBranding(tenantID, tenant.Name), nil
}

// businessName is the display name used in drafts and emails. Lookup
// failures fall back to an empty name.
func businessName(ctx context.Context, brandingRepo port.BrandingRepository, tenantRepo port.TenantRepository, tenantID uuid.UUID) string {
	b, err := loadBranding(ctx, brandingRepo, tenantRepo, tenantID)
	if err != nil {
		log.Printf("service.businessName: tenant %s: %v", tenantID, err)
		return ""
	}
	return b.BusinessName
}
