// Package stream consumes notification requests from an event stream
// (Kafka or NATS) and publishes requests onto it. Every message is handled
// independently: a malformed or failing message is logged, counted and
// skipped without affecting the rest of the stream.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/service"
)

// Sender dispatches one validated request.
type Sender interface {
	Send(ctx context.Context, source string, req notification.Request) (string, error)
}

// Processor turns raw stream payloads into dispatches.
type Processor struct {
	sender Sender
	source string
	logger *slog.Logger
}

// NewProcessor returns a Processor that records source on every dispatch.
func NewProcessor(sender Sender, source string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{sender: sender, source: source, logger: logger.With("source", source)}
}

// Process decodes and dispatches one payload and returns the metrics
// result label. It never returns an error; failures are logged.
func (p *Processor) Process(ctx context.Context, payload []byte) string {
	result := p.process(ctx, payload)
	metrics.StreamMessages.WithLabelValues(p.source, result).Inc()
	return result
}

func (p *Processor) process(ctx context.Context, payload []byte) string {
	req, err := Decode(payload)
	if err != nil {
		p.logger.Warn("discarding malformed notification message", "error", err, "size", len(payload))
		return metrics.ResultMalformed
	}

	id, err := p.sender.Send(ctx, p.source, req)
	if err == nil {
		return metrics.ResultDispatched
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		p.logger.Warn("discarding invalid notification message", "error", err, "fields", ve.Fields)
		return metrics.ResultInvalid
	}
	// The delivery service has already logged and recorded the failure.
	p.logger.Debug("notification message dispatch failed", "request_id", id, "error_kind", notification.Kind(err))
	return metrics.ResultFailed
}

// Decode parses a JSON notification request.
func Decode(payload []byte) (notification.Request, error) {
	return notification.DecodeRequest(bytes.NewReader(payload))
}

// Encode serializes req as a stream payload.
func Encode(req notification.Request) ([]byte, error) {
	return json.Marshal(req)
}

// Publisher enqueues notification requests onto the event stream.
type Publisher interface {
	Publish(ctx context.Context, req notification.Request) error
	Close() error
}
