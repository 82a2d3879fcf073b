package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
)

// MockBrandingRepo is a mock implementation of port.BrandingRepository.
type MockBrandingRepo struct {
	mock.Mock
}

func (m *MockBrandingRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantBranding, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantBranding), args.Error(1)
}

func (m *MockBrandingRepo) Save(ctx context.Context, branding *domain.TenantBranding) error {
	args := m.Called(ctx, branding)
	return args.Error(0)
}
