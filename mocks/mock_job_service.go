package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// MockJobService is a mock implementation of service.JobService.
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, actor service.Actor, input service.CreateJobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) GetByID(ctx context.Context, actor service.Actor, jobID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) List(ctx context.Context, actor service.Actor, filter port.JobFilter) ([]domain.Job, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobService) Update(ctx context.Context, actor service.Actor, jobID uuid.UUID, input service.UpdateJobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) Delete(ctx context.Context, actor service.Actor, jobID uuid.UUID) error {
	args := m.Called(ctx, actor, jobID)
	return args.Error(0)
}

func (m *MockJobService) Advance(ctx context.Context, actor service.Actor, jobID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) ToggleOperator(ctx context.Context, actor service.Actor, jobID, operatorID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) ListNeedingAssignment(ctx context.Context, actor service.Actor) ([]domain.Job, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobService) ListOverdue(ctx context.Context, actor service.Actor) ([]domain.Job, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}
