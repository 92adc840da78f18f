// Package handlers provides HTTP handlers for win statistics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/modules/history"
	"github.com/aristath/paddock/internal/modules/participants"
	"github.com/aristath/paddock/internal/modules/stats"
)

// Handler provides HTTP handlers for statistics endpoints
type Handler struct {
	historyRepo *history.Repository
	rosterRepo  *participants.Repository
	log         zerolog.Logger
}

// NewHandler creates a new stats handler
func NewHandler(historyRepo *history.Repository, rosterRepo *participants.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		historyRepo: historyRepo,
		rosterRepo:  rosterRepo,
		log:         log.With().Str("handler", "stats").Logger(),
	}
}

// HandleStats handles GET /api/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	entries, roster, ok := h.load(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats.Compute(entries, roster))
}

// HandleFairness handles GET /api/stats/fairness
func (h *Handler) HandleFairness(w http.ResponseWriter, r *http.Request) {
	entries, _, ok := h.load(w)
	if !ok {
		return
	}

	enabled, err := h.rosterRepo.Enabled()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load enabled participants")
		http.Error(w, "Failed to compute fairness", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats.Fairness(entries, enabled))
}

func (h *Handler) load(w http.ResponseWriter) ([]history.Entry, []participants.Participant, bool) {
	entries, err := h.historyRepo.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load history")
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return nil, nil, false
	}

	roster, err := h.rosterRepo.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load roster")
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return nil, nil, false
	}

	return entries, roster, true
}
