package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/port"
)

// MockIdentityProvider is a mock implementation of port.IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*port.IdentityClaims, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.IdentityClaims), args.Error(1)
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, input port.NewIdentityUser) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockIdentityProvider) Provider() string {
	args := m.Called()
	return args.String(0)
}
