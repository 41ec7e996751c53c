// Package email implements the EMAIL delivery strategy: it renders an HTML
// template and sends it through the active SMTP transport.
package email

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/render"
	"github.com/shaharia-lab/notifyd/internal/storage"
	"github.com/shaharia-lab/notifyd/internal/transport"
)

// TemplatePrefix is prepended to the request's template name.
const TemplatePrefix = "email/"

// TransportResolver returns the currently active transport configuration.
type TransportResolver interface {
	ResolveActiveTransport(ctx context.Context) (storage.TransportConfig, error)
}

// Strategy delivers EMAIL notifications.
type Strategy struct {
	resolver TransportResolver
	factory  transport.Factory
	renderer render.Renderer
	logger   *slog.Logger
}

// New returns an email Strategy.
func New(resolver TransportResolver, factory transport.Factory, renderer render.Renderer, logger *slog.Logger) *Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Strategy{
		resolver: resolver,
		factory:  factory,
		renderer: renderer,
		logger:   logger,
	}
}

// Type implements notification.Strategy.
func (s *Strategy) Type() notification.Type { return notification.TypeEmail }

// Send resolves the transport, renders the template and sends one message.
// The transport configuration is looked up on every call.
func (s *Strategy) Send(ctx context.Context, req notification.Request) error {
	cfg, err := s.resolver.ResolveActiveTransport(ctx)
	if err != nil {
		var tue *notification.TransportUnavailableError
		if errors.As(err, &tue) {
			return err
		}
		return &notification.TransportUnavailableError{Err: err}
	}
	client := s.factory.Build(cfg)

	body, err := s.renderer.Render(TemplatePrefix+req.TemplateName, req.TemplateVariables)
	if err != nil {
		return &notification.TemplateProcessingError{TemplateName: req.TemplateName, Err: err}
	}

	msg := transport.Message{
		To:       req.Recipient,
		Subject:  req.Subject,
		HTMLBody: body,
	}
	if err := client.Send(ctx, msg); err != nil {
		return &notification.DeliveryError{Recipient: req.Recipient, Subject: req.Subject, Err: err}
	}

	s.logger.Info("email sent",
		"recipient", req.Recipient,
		"template", req.TemplateName,
		"transport_host", cfg.Host)
	return nil
}
