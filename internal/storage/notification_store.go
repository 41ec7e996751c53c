package storage

import (
	"context"
	"time"
)

// Delivery statuses recorded in the notification log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationLogEntry records a single dispatch attempt.
type NotificationLogEntry struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id"`
	Source       string    `json:"source"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	TemplateName string    `json:"template_name"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMsg     string    `json:"error_msg,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationStore defines the interface for persisting dispatch attempts.
type NotificationStore interface {
	// LogNotification records a dispatch attempt.
	LogNotification(ctx context.Context, entry NotificationLogEntry) error
	// ListNotifications returns the most recent entries, up to limit.
	ListNotifications(ctx context.Context, limit int) ([]NotificationLogEntry, error)
	// DeleteNotificationsBefore removes entries created before t and returns how many were removed.
	DeleteNotificationsBefore(ctx context.Context, t time.Time) (int64, error)
}
