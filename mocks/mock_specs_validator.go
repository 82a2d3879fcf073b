package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockSpecsValidator is a mock implementation of port.SpecsValidator.
type MockSpecsValidator struct {
	mock.Mock
}

func (m *MockSpecsValidator) ValidateSpecs(ctx context.Context, specs json.RawMessage) error {
	args := m.Called(ctx, specs)
	return args.Error(0)
}
