package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

// MockTransportService is a mock implementation of service.TransportService.
type MockTransportService struct {
	mock.Mock
}

//nolint:revive
func (m *MockTransportService) List(ctx context.Context) ([]*storage.TransportConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportService) Get(ctx context.Context, id int64) (*storage.TransportConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportService) Active(ctx context.Context) (*storage.TransportConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportService) Create(ctx context.Context, in service.TransportInput) (*storage.TransportConfig, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportService) Update(ctx context.Context, id int64, in service.TransportInput) (*storage.TransportConfig, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportService) Activate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

//nolint:revive
func (m *MockTransportService) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

//nolint:revive
func (m *MockTransportService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

//nolint:revive
func (m *MockTransportService) Test(ctx context.Context, id int64, recipient string) error {
	return m.Called(ctx, id, recipient).Error(0)
}
