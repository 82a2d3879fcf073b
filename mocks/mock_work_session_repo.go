package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// MockWorkSessionRepo is a mock implementation of port.WorkSessionRepository.
type MockWorkSessionRepo struct {
	mock.Mock
}

func (m *MockWorkSessionRepo) Start(ctx context.Context, session *domain.WorkSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockWorkSessionRepo) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.WorkSession, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionRepo) GetActive(ctx context.Context, tenantID, operatorID uuid.UUID) (*domain.WorkSession, error) {
	args := m.Called(ctx, tenantID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.WorkSessionFilter) ([]domain.WorkSession, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkSession), args.Error(1)
}

func (m *MockWorkSessionRepo) Update(ctx context.Context, session *domain.WorkSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
