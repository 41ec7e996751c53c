package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifyd/internal/storage"
)

// MockTransportStore is a mock implementation of storage.TransportStore.
type MockTransportStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockTransportStore) ActiveTransport(ctx context.Context) (*storage.TransportConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportStore) ListTransports(ctx context.Context) ([]*storage.TransportConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportStore) GetTransport(ctx context.Context, id int64) (*storage.TransportConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.TransportConfig), args.Error(1)
}

//nolint:revive
func (m *MockTransportStore) CreateTransport(ctx context.Context, cfg *storage.TransportConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransportStore) UpdateTransport(ctx context.Context, cfg *storage.TransportConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransportStore) ActivateTransport(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransportStore) DeactivateTransport(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransportStore) DeleteTransport(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransportStore) CountTransports(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
