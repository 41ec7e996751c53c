package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaharia-lab/notifyd/internal/eventbus"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

const recordTimeout = 5 * time.Second

// DeliveryRecorder persists delivery outcome events to the delivery log.
// It runs on the event bus workers, off the dispatch path.
type DeliveryRecorder struct {
	store  storage.NotificationStore
	logger *slog.Logger
}

// NewDeliveryRecorder returns a recorder writing to store.
func NewDeliveryRecorder(store storage.NotificationStore, logger *slog.Logger) *DeliveryRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliveryRecorder{store: store, logger: logger}
}

// Handle is an eventbus.Listener. Events other than delivery outcomes are ignored.
func (r *DeliveryRecorder) Handle(e eventbus.Event) {
	var status string
	switch e.Type {
	case eventbus.TypeDeliverySent:
		status = storage.StatusSent
	case eventbus.TypeDeliveryFailed:
		status = storage.StatusFailed
	default:
		return
	}

	entry := storage.NotificationLogEntry{
		RequestID:    e.Payload[eventbus.KeyRequestID],
		Source:       e.Payload[eventbus.KeySource],
		Type:         e.Payload[eventbus.KeyType],
		Category:     e.Payload[eventbus.KeyCategory],
		Recipient:    e.Payload[eventbus.KeyRecipient],
		Subject:      e.Payload[eventbus.KeySubject],
		TemplateName: e.Payload[eventbus.KeyTemplateName],
		Status:       status,
		ErrorKind:    e.Payload[eventbus.KeyErrorKind],
		ErrorMsg:     e.Payload[eventbus.KeyError],
		CreatedAt:    e.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.store.LogNotification(ctx, entry); err != nil {
		r.logger.Error("failed to record delivery outcome",
			"request_id", entry.RequestID, "status", status, "error", err)
	}
}
