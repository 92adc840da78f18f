// Package handlers provides HTTP handlers for roster management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/modules/participants"
)

// Handler provides HTTP handlers for participant endpoints
type Handler struct {
	service *participants.Service
	log     zerolog.Logger
}

// NewHandler creates a new participants handler
func NewHandler(service *participants.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "participants").Logger(),
	}
}

// createRequest is the body for POST /api/participants
type createRequest struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// HandleList handles GET /api/participants
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	roster, err := h.service.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list participants")
		http.Error(w, "Failed to list participants", http.StatusInternalServerError)
		return
	}
	if roster == nil {
		roster = []participants.Participant{}
	}
	writeJSON(w, roster)
}

// HandleCreate handles POST /api/participants
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	p, err := h.service.Create(req.Name, req.Color, enabled)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// HandleUpdate handles PUT /api/participants/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update participants.ParticipantUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(id, update)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, p)
}

// HandleToggle handles POST /api/participants/{id}/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Toggle(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, p)
}

// HandleDelete handles DELETE /api/participants/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondError maps service errors to status codes: validation failures are
// 400s, a missing participant is 404, everything else is a 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, participants.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, participants.ErrNameRequired),
		errors.Is(err, participants.ErrNameTooLong),
		errors.Is(err, participants.ErrNameInvalid),
		errors.Is(err, participants.ErrColorRequired),
		errors.Is(err, participants.ErrRosterFull):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Participant operation failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
