package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// MockIncidentService is a mock implementation of service.IncidentService.
type MockIncidentService struct {
	mock.Mock
}

func (m *MockIncidentService) Create(ctx context.Context, actor service.Actor, input service.CreateIncidentInput) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) GetByID(ctx context.Context, actor service.Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) List(ctx context.Context, actor service.Actor, filter port.IncidentFilter) ([]domain.IncidentReport, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) Edit(ctx context.Context, actor service.Actor, incidentID uuid.UUID, input service.EditIncidentInput) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, incidentID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) SetReviewNotes(ctx context.Context, actor service.Actor, incidentID uuid.UUID, notes string) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, incidentID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) GenerateNarrative(ctx context.Context, actor service.Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) Advance(ctx context.Context, actor service.Actor, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	args := m.Called(ctx, actor, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentService) Delete(ctx context.Context, actor service.Actor, incidentID uuid.UUID) error {
	args := m.Called(ctx, actor, incidentID)
	return args.Error(0)
}
