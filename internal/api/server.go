// Package api implements the notifyd REST handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/service"
)

const errInvalidJSONBody = "invalid JSON body"

// Server holds all dependencies for the REST API handlers.
type Server struct {
	deliverySvc  service.DeliveryService
	transportSvc service.TransportService
	logger       *slog.Logger
}

// New creates a new API Server backed by the provided services.
func New(deliverySvc service.DeliveryService, transportSvc service.TransportService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		deliverySvc:  deliverySvc,
		transportSvc: transportSvc,
		logger:       logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Dispatch
	r.Post("/notifications/send", s.handleSendNotification)
	r.Get("/notifications/types", s.handleListTypes)
	r.Get("/notifications/log", s.handleListNotificationLog)

	// Transport configurations
	r.Get("/transports", s.handleListTransports)
	r.Post("/transports", s.handleCreateTransport)
	r.Get("/transports/active", s.handleGetActiveTransport)
	r.Get("/transports/{id}", s.handleGetTransport)
	r.Put("/transports/{id}", s.handleUpdateTransport)
	r.Delete("/transports/{id}", s.handleDeleteTransport)
	r.Post("/transports/{id}/activate", s.handleActivateTransport)
	r.Post("/transports/{id}/deactivate", s.handleDeactivateTransport)
	r.Post("/transports/{id}/test", s.handleTestTransport)

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

type errorResponse struct {
	Error     string            `json:"error"`
	Kind      string            `json:"kind,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service and dispatch errors to HTTP status codes.
func statusFor(err error) int {
	var (
		ve  *service.ValidationError
		nf  *service.NotFoundError
		ce  *service.ConflictError
		ute *notification.UnsupportedTypeError
		tue *notification.TransportUnavailableError
		tpe *notification.TemplateProcessingError
		de  *notification.DeliveryError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ute):
		return http.StatusBadRequest
	case errors.As(err, &tue):
		return http.StatusServiceUnavailable
	case errors.As(err, &tpe):
		return http.StatusUnprocessableEntity
	case errors.As(err, &de):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status from statusFor. Internal
// errors are logged and replaced by fallback.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, requestID, fallback string) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), RequestID: requestID}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		resp.Kind = notification.KindInvalid
		resp.Fields = ve.Fields
		if len(resp.Fields) == 0 && ve.Field != "" {
			resp.Fields = map[string]string{ve.Field: ve.Message}
		}
	} else if k := notification.Kind(err); k != notification.KindInternal {
		resp.Kind = k
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(fallback, "error", err)
		resp.Error = fallback
	}
	writeJSON(w, status, resp)
}
