package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// MockIncidentRepo is a mock implementation of port.IncidentRepository.
type MockIncidentRepo struct {
	mock.Mock
}

func (m *MockIncidentRepo) Create(ctx context.Context, incident *domain.IncidentReport) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepo) GetByID(ctx context.Context, tenantID, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	args := m.Called(ctx, tenantID, incidentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.IncidentFilter) ([]domain.IncidentReport, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncidentReport), args.Error(1)
}

func (m *MockIncidentRepo) Update(ctx context.Context, incident *domain.IncidentReport) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRepo) Delete(ctx context.Context, tenantID, incidentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, incidentID)
	return args.Error(0)
}
