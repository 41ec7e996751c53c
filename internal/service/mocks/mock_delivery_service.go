package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

// MockDeliveryService is a mock implementation of service.DeliveryService.
type MockDeliveryService struct {
	mock.Mock
}

//nolint:revive
func (m *MockDeliveryService) Send(ctx context.Context, source string, req notification.Request) (string, error) {
	args := m.Called(ctx, source, req)
	return args.String(0), args.Error(1)
}

//nolint:revive
func (m *MockDeliveryService) SupportedTypes() []notification.Type {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]notification.Type)
}

//nolint:revive
func (m *MockDeliveryService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}
