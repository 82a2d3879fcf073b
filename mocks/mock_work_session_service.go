package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// MockWorkSessionService is a mock implementation of service.WorkSessionService.
type MockWorkSessionService struct {
	mock.Mock
}

func (m *MockWorkSessionService) Start(ctx context.Context, actor service.Actor, input service.StartSessionInput) (*domain.WorkSession, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionService) End(ctx context.Context, actor service.Actor, sessionID uuid.UUID, input service.EndSessionInput) (*domain.WorkSession, error) {
	args := m.Called(ctx, actor, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionService) GetByID(ctx context.Context, actor service.Actor, sessionID uuid.UUID) (*domain.WorkSession, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionService) GetActive(ctx context.Context, actor service.Actor) (*domain.WorkSession, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionService) List(ctx context.Context, actor service.Actor, filter port.WorkSessionFilter) ([]domain.WorkSession, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionService) AddMedia(ctx context.Context, actor service.Actor, sessionID uuid.UUID, key string) (*domain.WorkSession, error) {
	args := m.Called(ctx, actor, sessionID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}
