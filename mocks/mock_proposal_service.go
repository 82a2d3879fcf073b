package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// MockProposalService is a mock implementation of service.ProposalService.
type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) Create(ctx context.Context, actor service.Actor, input service.CreateProposalInput) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) GetByID(ctx context.Context, actor service.Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) List(ctx context.Context, actor service.Actor, filter port.ProposalFilter) ([]domain.Proposal, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Proposal), args.Error(1)
}

func (m *MockProposalService) Edit(ctx context.Context, actor service.Actor, proposalID uuid.UUID, input service.EditProposalInput) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) ListVersions(ctx context.Context, actor service.Actor, proposalID uuid.UUID) ([]domain.ProposalVersion, error) {
	args := m.Called(ctx, actor, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProposalVersion), args.Error(1)
}

func (m *MockProposalService) MarkSent(ctx context.Context, actor service.Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) Approve(ctx context.Context, actor service.Actor, proposalID uuid.UUID, input service.DecisionInput) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) Reject(ctx context.Context, actor service.Actor, proposalID uuid.UUID, input service.DecisionInput) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) ConvertToJob(ctx context.Context, actor service.Actor, proposalID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, actor, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockProposalService) GenerateDraft(ctx context.Context, actor service.Actor, proposalID uuid.UUID) (*domain.Proposal, error) {
	args := m.Called(ctx, actor, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proposal), args.Error(1)
}

func (m *MockProposalService) Delete(ctx context.Context, actor service.Actor, proposalID uuid.UUID) error {
	args := m.Called(ctx, actor, proposalID)
	return args.Error(0)
}
