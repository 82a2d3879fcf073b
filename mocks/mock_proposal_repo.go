package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// MockProposalRepo is a mock implementation of port.ProposalRepository.
type MockProposalRepo struct {
	mock.Mock
}

func (m *MockProposalRepo) Create(ctx context.Context, proposal *domain.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockProposalRepo) GetByID(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.Proposal, error) {
	args := m.Called(ctx, tenantID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ProposalFilter) ([]domain.Proposal, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Proposal), args.Error(1)
}

func (m *MockProposalRepo) Update(ctx context.Context, proposal *domain.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockProposalRepo) UpdateWithRevision(ctx context.Context, proposal *domain.Proposal, prev *domain.ProposalVersion) error {
	args := m.Called(ctx, proposal, prev)
	return args.Error(0)
}

func (m *MockProposalRepo) ListVersions(ctx context.Context, tenantID, proposalID uuid.UUID) ([]domain.ProposalVersion, error) {
	args := m.Called(ctx, tenantID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProposalVersion), args.Error(1)
}

func (m *MockProposalRepo) Delete(ctx context.Context, tenantID, proposalID uuid.UUID) error {
	args := m.Called(ctx, tenantID, proposalID)
	return args.Error(0)
}

func (m *MockProposalRepo) CreateForJob(ctx context.Context, proposal *domain.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockProposalRepo) ConvertToJob(ctx context.Context, proposal *domain.Proposal, job *domain.Job) error {
	args := m.Called(ctx, proposal, job)
	return args.Error(0)
}
