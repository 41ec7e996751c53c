package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/notifyd/internal/service"
)

type testTransportRequest struct {
	Recipient string `json:"recipient"`
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transport id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleListTransports(w http.ResponseWriter, r *http.Request) {
	list, err := s.transportSvc.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "", "failed to list transports")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetActiveTransport(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.transportSvc.Active(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "", "failed to load active transport")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	cfg, err := s.transportSvc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "", "failed to load transport")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateTransport(w http.ResponseWriter, r *http.Request) {
	var in service.TransportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	created, err := s.transportSvc.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, err, "", "failed to create transport")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateTransport replaces a transport. Sending the masked password
// ("***") keeps the stored one.
func (s *Server) handleUpdateTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in service.TransportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	updated, err := s.transportSvc.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, err, "", "failed to update transport")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.transportSvc.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "", "failed to delete transport")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.transportSvc.Activate(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "", "failed to activate transport")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (s *Server) handleDeactivateTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.transportSvc.Deactivate(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "", "failed to deactivate transport")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "inactive"})
}

// handleTestTransport sends a test message through the transport, active or not.
func (s *Server) handleTestTransport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req testTransportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	if err := s.transportSvc.Test(r.Context(), id, req.Recipient); err != nil {
		s.writeServiceError(w, err, "", "failed to test transport")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
