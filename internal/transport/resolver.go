// Package transport resolves the active outbound transport configuration and
// builds ready-to-use SMTP clients from it.
package transport

import (
	"context"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

// ActiveConfigStore is the narrow read interface the resolver needs.
type ActiveConfigStore interface {
	ActiveTransport(ctx context.Context) (*storage.TransportConfig, error)
}

// Resolver looks up the active transport configuration on every call.
// Nothing is cached, so configuration changes apply to the next send.
type Resolver struct {
	store ActiveConfigStore
}

// NewResolver returns a Resolver backed by store.
func NewResolver(store ActiveConfigStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveActiveTransport returns a copy of the active configuration. Any
// failure, including the absence of an active record, is reported as
// *notification.TransportUnavailableError.
func (r *Resolver) ResolveActiveTransport(ctx context.Context) (storage.TransportConfig, error) {
	cfg, err := r.store.ActiveTransport(ctx)
	if err != nil {
		return storage.TransportConfig{}, &notification.TransportUnavailableError{Err: err}
	}
	if cfg == nil {
		return storage.TransportConfig{}, &notification.TransportUnavailableError{Err: storage.ErrNoActiveTransport}
	}
	return *cfg, nil
}
