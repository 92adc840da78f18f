// Package handlers provides HTTP handlers for triggering and observing races.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/modules/race"
)

// Handler provides HTTP handlers for race endpoints
type Handler struct {
	service *race.Service
	log     zerolog.Logger
}

// NewHandler creates a new race handler
func NewHandler(service *race.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "race").Logger(),
	}
}

// HandleStart handles POST /api/race/start.
// A trigger while a race is running returns 409 and changes nothing; too few
// enabled participants returns 400 with a user-displayable message.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	err := h.service.Start()
	switch {
	case err == nil:
		writeJSON(w, map[string]string{"status": "started"})
	case errors.Is(err, race.ErrRaceInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, race.ErrInsufficientParticipants):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Failed to start race")
		http.Error(w, "Failed to start race", http.StatusInternalServerError)
	}
}

// HandleCancel handles POST /api/race/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.service.Cancel()
	writeJSON(w, map[string]string{"status": "cancelled"})
}

// HandleStatus handles GET /api/race/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Status())
}

// HandleReplay handles GET /api/race/replay?mode=race|wheel
func (h *Handler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = string(race.ModeRace)
	}

	replay, err := h.service.LatestReplay(mode)
	if err != nil {
		h.log.Error().Err(err).Str("mode", mode).Msg("Failed to load replay")
		http.Error(w, "Failed to load replay", http.StatusInternalServerError)
		return
	}
	if replay == nil {
		http.Error(w, "No replay recorded yet", http.StatusNotFound)
		return
	}
	writeJSON(w, replay)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
