package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/service"
)

// MockClientService is a mock implementation of service.ClientService.
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, actor service.Actor, input service.ClientInput) (*domain.Client, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) GetByID(ctx context.Context, actor service.Actor, clientID uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, actor, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) List(ctx context.Context, actor service.Actor) ([]domain.Client, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, actor service.Actor, clientID uuid.UUID, input service.ClientInput) (*domain.Client, error) {
	args := m.Called(ctx, actor, clientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, actor service.Actor, clientID uuid.UUID) error {
	args := m.Called(ctx, actor, clientID)
	return args.Error(0)
}

func (m *MockClientService) LinkUser(ctx context.Context, actor service.Actor, clientID, userID uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, actor, clientID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) UnlinkUser(ctx context.Context, actor service.Actor, clientID uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, actor, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ReconcileLinks(ctx context.Context, actor service.Actor) ([]domain.LinkRepair, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LinkRepair), args.Error(1)
}
