package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/service"
)

// MockBrandingService is a mock implementation of service.BrandingService.
type MockBrandingService struct {
	mock.Mock
}

func (m *MockBrandingService) Get(ctx context.Context, actor service.Actor) (*domain.TenantBranding, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantBranding), args.Error(1)
}

func (m *MockBrandingService) Save(ctx context.Context, actor service.Actor, input service.SaveBrandingInput) (*domain.TenantBranding, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantBranding), args.Error(1)
}
