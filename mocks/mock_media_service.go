package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/service"
)

// MockMediaService is a mock implementation of service.MediaService.
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, actor service.Actor, input service.MediaUploadInput) (*service.MediaObject, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MediaObject), args.Error(1)
}

func (m *MockMediaService) DownloadURL(ctx context.Context, actor service.Actor, key string) (string, error) {
	args := m.Called(ctx, actor, key)
	return args.String(0), args.Error(1)
}
