package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/port"
)

// MockMediaStorage is a mock implementation of port.MediaStorage.
type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) Put(ctx context.Context, input port.PutObjectInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockMediaStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockMediaStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
