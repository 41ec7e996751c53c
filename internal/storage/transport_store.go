package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoActiveTransport is returned when no transport configuration is active.
	ErrNoActiveTransport = errors.New("no active transport configuration")
	// ErrTransportNotFound is returned when a transport configuration id does not exist.
	ErrTransportNotFound = errors.New("transport configuration not found")
)

// TransportConfig describes one outbound SMTP endpoint.
//
// At most one TransportConfig is active at any time; the store enforces this
// on every write.
type TransportConfig struct {
	ID                     int64     `json:"id" yaml:"-"`
	Host                   string    `json:"host" yaml:"host"`
	Port                   int       `json:"port" yaml:"port"`
	FromAddress            string    `json:"from_address" yaml:"from_address"`
	Username               string    `json:"username" yaml:"username"`
	Password               string    `json:"password" yaml:"password"`
	AuthEnabled            bool      `json:"auth_enabled" yaml:"auth_enabled"`
	SecureTransportEnabled bool      `json:"secure_transport_enabled" yaml:"secure_transport_enabled"`
	IsActive               bool      `json:"is_active" yaml:"is_active"`
	CreatedAt              time.Time `json:"created_at" yaml:"-"`
	UpdatedAt              time.Time `json:"updated_at" yaml:"-"`
}

// TransportStore persists transport configurations.
type TransportStore interface {
	// ActiveTransport returns the single active configuration or ErrNoActiveTransport.
	ActiveTransport(ctx context.Context) (*TransportConfig, error)
	// ListTransports returns every configuration ordered by id.
	ListTransports(ctx context.Context) ([]*TransportConfig, error)
	// GetTransport returns the configuration with id or ErrTransportNotFound.
	GetTransport(ctx context.Context, id int64) (*TransportConfig, error)
	// CreateTransport inserts cfg and sets its ID and timestamps. When cfg is
	// active every other configuration is deactivated in the same transaction.
	CreateTransport(ctx context.Context, cfg *TransportConfig) error
	// UpdateTransport replaces the stored fields of cfg.ID, with the same
	// activation rule as CreateTransport.
	UpdateTransport(ctx context.Context, cfg *TransportConfig) error
	// ActivateTransport makes id the only active configuration.
	ActivateTransport(ctx context.Context, id int64) error
	// DeactivateTransport clears the active flag of id.
	DeactivateTransport(ctx context.Context, id int64) error
	// DeleteTransport removes id.
	DeleteTransport(ctx context.Context, id int64) error
	// CountTransports returns the number of stored configurations.
	CountTransports(ctx context.Context) (int, error)
}
