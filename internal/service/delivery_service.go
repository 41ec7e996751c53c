// Package service implements the business logic layer between the ingress
// adapters (HTTP, event stream, CLI) and the dispatch core. All interfaces
// are designed for easy mocking in tests.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/notifyd/internal/eventbus"
	"github.com/shaharia-lab/notifyd/internal/logger"
	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/storage"
	"github.com/shaharia-lab/notifyd/internal/telemetry"
)

// Request sources recorded in the delivery log.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceNATS  = "nats"
	SourceCLI   = "cli"
)

// Dispatcher is the dispatch core as seen by the service layer.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notification.Request) error
	Types() []notification.Type
}

// DeliveryService validates and dispatches notification requests and
// exposes the delivery log.
type DeliveryService interface {
	// Send validates req and dispatches it inline. It returns the request id
	// assigned to the attempt; the id is also returned alongside dispatch
	// errors so callers can correlate the delivery log entry.
	Send(ctx context.Context, source string, req notification.Request) (string, error)
	// SupportedTypes lists the notification types that have a strategy.
	SupportedTypes() []notification.Type
	// ListLog returns the most recent delivery log entries.
	ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error)
}

type deliveryService struct {
	dispatcher Dispatcher
	log        storage.NotificationStore
	events     EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewDeliveryService returns a DeliveryService. events may be nil, in which
// case outcomes are not published.
func NewDeliveryService(
	dispatcher Dispatcher,
	log storage.NotificationStore,
	events EventPublisher,
	logger *slog.Logger,
) DeliveryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &deliveryService{
		dispatcher: dispatcher,
		log:        log,
		events:     events,
		tracer:     telemetry.Tracer(),
		logger:     logger,
	}
}

func (s *deliveryService) Send(ctx context.Context, source string, req notification.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", toValidationError(err)
	}

	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "notification.dispatch", trace.WithAttributes(
		attribute.String("notification.request_id", requestID),
		attribute.String("notification.source", source),
		attribute.String("notification.type", req.Type.String()),
		attribute.String("notification.template", req.TemplateName),
	))
	defer span.End()

	log := logger.WithTrace(ctx, s.logger).With(
		"request_id", requestID,
		"source", source,
		"notification_type", req.Type.String(),
		"recipient", req.Recipient,
	)

	start := time.Now()
	err := s.dispatcher.Dispatch(ctx, req)
	metrics.DispatchDuration.WithLabelValues(req.Type.String()).Observe(time.Since(start).Seconds())

	kind := notification.Kind(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		metrics.DispatchTotal.WithLabelValues(req.Type.String(), metrics.OutcomeFailed, kind).Inc()
		log.Error("notification dispatch failed", "error_kind", kind, "retryable", notification.Retryable(err), "error", err)
	} else {
		metrics.DispatchTotal.WithLabelValues(req.Type.String(), metrics.OutcomeSent, "").Inc()
		log.Info("notification dispatched")
	}

	s.publishOutcome(requestID, source, req, err)
	return requestID, err
}

func (s *deliveryService) publishOutcome(requestID, source string, req notification.Request, err error) {
	if s.events == nil {
		return
	}
	payload := map[string]string{
		eventbus.KeyRequestID:    requestID,
		eventbus.KeySource:       source,
		eventbus.KeyType:         req.Type.String(),
		eventbus.KeyCategory:     string(req.EffectiveCategory()),
		eventbus.KeyRecipient:    req.Recipient,
		eventbus.KeySubject:      req.Subject,
		eventbus.KeyTemplateName: req.TemplateName,
	}
	eventType := eventbus.TypeDeliverySent
	if err != nil {
		eventType = eventbus.TypeDeliveryFailed
		payload[eventbus.KeyErrorKind] = notification.Kind(err)
		payload[eventbus.KeyError] = err.Error()
	}
	s.events.Publish(eventType, payload)
}

func (s *deliveryService) SupportedTypes() []notification.Type {
	return s.dispatcher.Types()
}

func (s *deliveryService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	return s.log.ListNotifications(ctx, limit)
}

func toValidationError(err error) error {
	var verrs notification.ValidationErrors
	if errors.As(err, &verrs) {
		fields := verrs.Fields()
		ve := &ValidationError{Message: "invalid notification request", Fields: fields}
		if len(verrs) == 1 {
			ve.Field = verrs[0].Field
			ve.Message = verrs[0].Message
		}
		return ve
	}
	return &ValidationError{Message: err.Error()}
}
