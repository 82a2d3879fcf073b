package service

import (
	"context"
	"fmt"
	"strings"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// UpdateTenantInput is the DTO for updating the caller's tenant.
type UpdateTenantInput struct {
	Name *string `json:"name"`
}

// TenantService defines the tenant management contract.
type TenantService interface {
	Get(ctx context.Context, actor Actor) (*domain.Tenant, error)
	Update(ctx context.Context, actor Actor, input UpdateTenantInput) (*domain.Tenant, error)
}

type tenantService struct {
	repo port.TenantRepository
}

// NewTenantService creates a new TenantService implementation.
func NewTenantService(repo port.TenantRepository) TenantService {
	return &tenantService{repo: repo}
}

func (s *tenantService) Get(ctx context.Context, actor Actor) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, actor.TenantID)
}

func (s *tenantService) Update(ctx context.Context, actor Actor, input UpdateTenantInput) (*domain.Tenant, error) {
	if actor.Role != domain.RoleOwner {
		return nil, domain.ErrInsufficientRole
	}
	tenant, err := s.repo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		tenant.Name = name
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}
