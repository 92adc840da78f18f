// Package handlers provides HTTP handlers for the win history.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
	"github.com/aristath/paddock/internal/modules/history"
)

// Handler provides HTTP handlers for history endpoints
type Handler struct {
	repo         *history.Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(repo *history.Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("handler", "history").Logger(),
	}
}

// HandleList handles GET /api/history
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list history")
		http.Error(w, "Failed to list history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// HandleClear handles DELETE /api/history
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.repo.Clear()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to clear history")
		http.Error(w, "Failed to clear history", http.StatusInternalServerError)
		return
	}

	h.eventManager.Publish("history", &events.HistoryClearedData{Removed: removed})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"removed": removed})
}
