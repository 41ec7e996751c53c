package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/render"
	"github.com/shaharia-lab/notifyd/internal/storage"
	"github.com/shaharia-lab/notifyd/internal/transport"
)

// MaskedPassword replaces stored passwords in every read. Sending it back on
// update keeps the stored password.
const MaskedPassword = "***"

// TestTemplateID is rendered for transport test messages.
const TestTemplateID = "email/transport-test"

var validate = notification.NewValidator()

// TransportInput is the writable part of a transport configuration.
type TransportInput struct {
	Host                   string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port                   int    `json:"port" validate:"required,min=1,max=65535"`
	FromAddress            string `json:"from_address" validate:"required,email"`
	Username               string `json:"username" validate:"required_if=AuthEnabled true"`
	Password               string `json:"password"`
	AuthEnabled            bool   `json:"auth_enabled"`
	SecureTransportEnabled bool   `json:"secure_transport_enabled"`
	IsActive               bool   `json:"is_active"`
}

func (in TransportInput) validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &ValidationError{Message: err.Error()}
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on " + fe.Tag()
		}
		ve := &ValidationError{Message: "invalid transport configuration", Fields: fields}
		if len(verrs) == 1 {
			ve.Field = verrs[0].Field()
			ve.Message = "failed on " + verrs[0].Tag()
		}
		return ve
	}
	return nil
}

func (in TransportInput) toConfig() *storage.TransportConfig {
	return &storage.TransportConfig{
		Host:                   in.Host,
		Port:                   in.Port,
		FromAddress:            in.FromAddress,
		Username:               in.Username,
		Password:               in.Password,
		AuthEnabled:            in.AuthEnabled,
		SecureTransportEnabled: in.SecureTransportEnabled,
		IsActive:               in.IsActive,
	}
}

// TransportService manages stored transport configurations.
type TransportService interface {
	// List returns every configuration. Passwords are masked.
	List(ctx context.Context) ([]*storage.TransportConfig, error)
	// Get returns one configuration. The password is masked.
	Get(ctx context.Context, id int64) (*storage.TransportConfig, error)
	// Active returns the active configuration. The password is masked.
	Active(ctx context.Context) (*storage.TransportConfig, error)
	// Create validates and stores a configuration. Creating an active
	// configuration deactivates the previous one.
	Create(ctx context.Context, in TransportInput) (*storage.TransportConfig, error)
	// Update replaces configuration id. A MaskedPassword keeps the stored password.
	Update(ctx context.Context, id int64, in TransportInput) (*storage.TransportConfig, error)
	// Activate makes id the only active configuration.
	Activate(ctx context.Context, id int64) error
	// Deactivate clears the active flag of id.
	Deactivate(ctx context.Context, id int64) error
	// Delete removes configuration id.
	Delete(ctx context.Context, id int64) error
	// Test sends a test message to recipient through configuration id,
	// whether or not it is active.
	Test(ctx context.Context, id int64, recipient string) error
}

type transportService struct {
	store    storage.TransportStore
	factory  transport.Factory
	renderer render.Renderer
	logger   *slog.Logger
}

// NewTransportService returns a TransportService backed by store.
func NewTransportService(
	store storage.TransportStore,
	factory transport.Factory,
	renderer render.Renderer,
	logger *slog.Logger,
) TransportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &transportService{store: store, factory: factory, renderer: renderer, logger: logger}
}

func masked(cfg *storage.TransportConfig) *storage.TransportConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	if out.Password != "" {
		out.Password = MaskedPassword
	}
	return &out
}

func (s *transportService) notFound(id int64, err error) error {
	if errors.Is(err, storage.ErrTransportNotFound) {
		return &NotFoundError{Resource: "transport", ID: strconv.FormatInt(id, 10)}
	}
	return err
}

func (s *transportService) List(ctx context.Context) ([]*storage.TransportConfig, error) {
	list, err := s.store.ListTransports(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transports: %w", err)
	}
	out := make([]*storage.TransportConfig, 0, len(list))
	for _, cfg := range list {
		out = append(out, masked(cfg))
	}
	return out, nil
}

func (s *transportService) Get(ctx context.Context, id int64) (*storage.TransportConfig, error) {
	cfg, err := s.store.GetTransport(ctx, id)
	if err != nil {
		return nil, s.notFound(id, err)
	}
	return masked(cfg), nil
}

func (s *transportService) Active(ctx context.Context) (*storage.TransportConfig, error) {
	cfg, err := s.store.ActiveTransport(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoActiveTransport) {
			return nil, &NotFoundError{Resource: "transport", ID: "active"}
		}
		return nil, fmt.Errorf("loading active transport: %w", err)
	}
	return masked(cfg), nil
}

func (s *transportService) Create(ctx context.Context, in TransportInput) (*storage.TransportConfig, error) {
	if in.Password == MaskedPassword {
		return nil, &ValidationError{Field: "password", Message: "must not be the mask placeholder"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	cfg := in.toConfig()
	if err := s.store.CreateTransport(ctx, cfg); err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}
	s.logger.Info("transport created", "transport_id", cfg.ID, "host", cfg.Host, "active", cfg.IsActive)
	return masked(cfg), nil
}

func (s *transportService) Update(ctx context.Context, id int64, in TransportInput) (*storage.TransportConfig, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.GetTransport(ctx, id)
	if err != nil {
		return nil, s.notFound(id, err)
	}

	cfg := in.toConfig()
	cfg.ID = id
	cfg.CreatedAt = existing.CreatedAt
	if in.Password == MaskedPassword {
		cfg.Password = existing.Password
	}
	if err := s.store.UpdateTransport(ctx, cfg); err != nil {
		return nil, s.notFound(id, err)
	}
	s.logger.Info("transport updated", "transport_id", id, "host", cfg.Host, "active", cfg.IsActive)
	return masked(cfg), nil
}

func (s *transportService) Activate(ctx context.Context, id int64) error {
	if err := s.store.ActivateTransport(ctx, id); err != nil {
		return s.notFound(id, err)
	}
	s.logger.Info("transport activated", "transport_id", id)
	return nil
}

func (s *transportService) Deactivate(ctx context.Context, id int64) error {
	if err := s.store.DeactivateTransport(ctx, id); err != nil {
		return s.notFound(id, err)
	}
	s.logger.Info("transport deactivated", "transport_id", id)
	return nil
}

func (s *transportService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransport(ctx, id); err != nil {
		return s.notFound(id, err)
	}
	s.logger.Info("transport deleted", "transport_id", id)
	return nil
}

func (s *transportService) Test(ctx context.Context, id int64, recipient string) error {
	if err := validate.Var(recipient, "required,email"); err != nil {
		return &ValidationError{Field: "recipient", Message: "must be a valid email address"}
	}
	cfg, err := s.store.GetTransport(ctx, id)
	if err != nil {
		return s.notFound(id, err)
	}

	body, err := s.renderer.Render(TestTemplateID, map[string]any{
		"host": cfg.Host,
		"port": cfg.Port,
	})
	if err != nil {
		return &notification.TemplateProcessingError{TemplateName: TestTemplateID, Err: err}
	}

	subject := "notifyd transport test"
	err = s.factory.Build(*cfg).Send(ctx, transport.Message{To: recipient, Subject: subject, HTMLBody: body})
	if err != nil {
		return &notification.DeliveryError{Recipient: recipient, Subject: subject, Err: err}
	}
	s.logger.Info("transport test sent", "transport_id", id, "recipient", recipient)
	return nil
}
