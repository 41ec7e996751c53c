package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/eventbus"
	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

func TestDeliveryRecorder_Handle(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		event      eventbus.Event
		wantStatus string
		wantLogged bool
	}{
		{
			name: "sent",
			event: eventbus.Event{Type: eventbus.TypeDeliverySent, Timestamp: ts, Payload: map[string]string{
				eventbus.KeyRequestID: "r1",
				eventbus.KeyRecipient: "a@b.com",
				eventbus.KeyType:      "EMAIL",
			}},
			wantStatus: storage.StatusSent,
			wantLogged: true,
		},
		{
			name: "failed",
			event: eventbus.Event{Type: eventbus.TypeDeliveryFailed, Timestamp: ts, Payload: map[string]string{
				eventbus.KeyRequestID: "r2",
				eventbus.KeyErrorKind: "delivery",
				eventbus.KeyError:     "boom",
			}},
			wantStatus: storage.StatusFailed,
			wantLogged: true,
		},
		{
			name:  "unrelated event ignored",
			event: eventbus.Event{Type: "something.else", Timestamp: ts},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memNotificationStore{}
			service.NewDeliveryRecorder(store, nil).Handle(tt.event)

			entries, err := store.ListNotifications(context.Background(), 0)
			require.NoError(t, err)
			if !tt.wantLogged {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			got := entries[0]
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.event.Payload[eventbus.KeyRequestID], got.RequestID)
			assert.Equal(t, tt.event.Payload[eventbus.KeyErrorKind], got.ErrorKind)
			assert.Equal(t, tt.event.Payload[eventbus.KeyError], got.ErrorMsg)
			assert.Equal(t, ts, got.CreatedAt)
		})
	}
}

func TestDeliveryRecorder_StoreErrorIsLoggedNotPanicked(t *testing.T) {
	store := &memNotificationStore{err: errors.New("disk full")}
	rec := service.NewDeliveryRecorder(store, nil)
	assert.NotPanics(t, func() {
		rec.Handle(eventbus.Event{Type: eventbus.TypeDeliverySent})
	})
}
