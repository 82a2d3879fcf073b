package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendProposalSent(ctx context.Context, toEmail, toName string, notice port.ProposalNotice) error {
	args := m.Called(ctx, toEmail, toName, notice)
	return args.Error(0)
}

func (m *MockEmailSender) SendCriticalIncident(ctx context.Context, toEmail, toName string, notice port.IncidentNotice) error {
	args := m.Called(ctx, toEmail, toName, notice)
	return args.Error(0)
}

func (m *MockEmailSender) SendInvite(ctx context.Context, toEmail, toName, businessName string) error {
	args := m.Called(ctx, toEmail, toName, businessName)
	return args.Error(0)
}
