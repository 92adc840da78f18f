// Package server provides the HTTP server and routing for Paddock.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
)

// streamBufferSize is the per-client event buffer. Race frames arrive at
// ~60/s; a slow client gets frames dropped rather than stalling the race.
const streamBufferSize = 256

// heartbeatInterval keeps idle SSE connections from being reaped by proxies
const heartbeatInterval = 15 * time.Second

// EventsStreamHandler handles Server-Sent Events streaming of all system
// events. The UI drives the entire race presentation off this stream:
// frame positions, the winner announcement, and the audio/effects cues.
type EventsStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_stream").Logger(),
	}
}

// allStreamTypes is every event type a client may subscribe to
var allStreamTypes = []events.EventType{
	events.RaceStarted,
	events.RaceFrame,
	events.RaceFinished,
	events.RaceCancelled,
	events.ParticipantChanged,
	events.SettingsChanged,
	events.HistoryCleared,
}

// ServeHTTP handles GET /api/events/stream requests (SSE).
// An optional comma-separated "types" query parameter filters the stream.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var allowedTypes map[events.EventType]bool
	if typesFilter := r.URL.Query().Get("types"); typesFilter != "" {
		allowedTypes = make(map[events.EventType]bool)
		for _, t := range strings.Split(typesFilter, ",") {
			allowedTypes[events.EventType(strings.TrimSpace(t))] = true
		}
	}

	h.log.Info().
		Str("remote", r.RemoteAddr).
		Msg("Client connected to event stream")

	eventChan := make(chan *events.Event, streamBufferSize)

	handler := func(event *events.Event) {
		if allowedTypes != nil && !allowedTypes[event.Type] {
			return
		}
		// Non-blocking send: drop rather than stall the publisher. Dropped
		// frames are invisible at 60fps; terminal events have the whole
		// buffer to themselves by then.
		select {
		case eventChan <- event:
		default:
		}
	}

	unsubscribes := make([]func(), 0, len(allStreamTypes))
	for _, eventType := range allStreamTypes {
		unsubscribes = append(unsubscribes, h.eventBus.Subscribe(eventType, handler))
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Str("remote", r.RemoteAddr).Msg("Client disconnected from event stream")
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case event := <-eventChan:
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Warn().Err(err).Str("type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
