package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/port"
)

// MockDrafter is a mock implementation of port.Drafter.
type MockDrafter struct {
	mock.Mock
}

func (m *MockDrafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DraftResult), args.Error(1)
}
