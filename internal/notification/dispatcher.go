package notification

import (
	"context"
	"log/slog"
)

// Dispatcher routes a request to the strategy registered for its type.
// It holds no mutable state and performs no I/O of its own.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher returns a Dispatcher backed by registry. A nil logger
// falls back to slog.Default().
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch looks up the strategy for req.Type and delegates to it. An
// unregistered type fails with *UnsupportedTypeError before any strategy is
// touched; otherwise the strategy's error is returned unchanged.
//
// Dispatch is not idempotent. Callers fed by an at-least-once stream must
// dedupe upstream if duplicate sends matter.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	strategy, ok := d.registry.Lookup(req.Type)
	if !ok {
		return &UnsupportedTypeError{Type: req.Type}
	}

	d.logger.Debug("dispatching notification",
		"notification_type", req.Type,
		"category", req.EffectiveCategory(),
		"template", req.TemplateName,
	)
	return strategy.Send(ctx, req)
}

// Types returns the notification types that can currently be dispatched.
func (d *Dispatcher) Types() []Type {
	return d.registry.Types()
}
