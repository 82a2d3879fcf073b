package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) JobsCSV(ctx context.Context, actor service.Actor, filter port.JobFilter, w io.Writer) error {
	args := m.Called(ctx, actor, filter, w)
	return args.Error(0)
}

func (m *MockExportService) TimesheetXLSX(ctx context.Context, actor service.Actor, input service.TimesheetInput, w io.Writer) error {
	args := m.Called(ctx, actor, input, w)
	return args.Error(0)
}
