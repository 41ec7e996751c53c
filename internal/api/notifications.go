package api

import (
	"net/http"
	"strconv"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/service"
)

const defaultLogLimit = 50

// maxRequestBytes bounds a send request body.
const maxRequestBytes = 1 << 20

type sendResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// handleSendNotification validates and dispatches a request inline. 202 is
// returned only after the send attempt succeeded.
func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	req, err := notification.DecodeRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	id, err := s.deliverySvc.Send(r.Context(), service.SourceHTTP, req)
	if err != nil {
		s.writeServiceError(w, err, id, "failed to send notification")
		return
	}
	writeJSON(w, http.StatusAccepted, sendResponse{Status: "accepted", RequestID: id})
}

// handleListTypes returns the notification types that have a delivery strategy.
func (s *Server) handleListTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": s.deliverySvc.SupportedTypes()})
}

// handleListNotificationLog returns recent delivery log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListNotificationLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.deliverySvc.ListLog(r.Context(), limit)
	if err != nil {
		s.logger.Error("list notification log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notification log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
