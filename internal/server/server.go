package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/database"
	"github.com/aristath/paddock/internal/events"
	historyhandlers "github.com/aristath/paddock/internal/modules/history/handlers"
	participanthandlers "github.com/aristath/paddock/internal/modules/participants/handlers"
	racehandlers "github.com/aristath/paddock/internal/modules/race/handlers"
	settingshandlers "github.com/aristath/paddock/internal/modules/settings/handlers"
	statshandlers "github.com/aristath/paddock/internal/modules/stats/handlers"
	"github.com/aristath/paddock/pkg/embedded"
)

// Config holds server configuration and the wired module handlers
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	EventBus  *events.Bus
	Databases []*database.DB

	ParticipantHandlers *participanthandlers.Handler
	RaceHandlers        *racehandlers.Handler
	HistoryHandlers     *historyhandlers.Handler
	StatsHandlers       *statshandlers.Handler
	SettingsHandlers    *settingshandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server with all routes mounted
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	systemHandlers := NewSystemHandlers(s.cfg.Databases, s.log)

	s.router.Route("/api", func(r chi.Router) {
		// Unified events stream (SSE) - the UI's sole push channel
		eventsStreamHandler := NewEventsStreamHandler(s.cfg.EventBus, s.log)
		r.Get("/events/stream", eventsStreamHandler.ServeHTTP)

		r.Get("/health", systemHandlers.HandleHealth)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandlers.HandleStatus)
		})

		r.Route("/participants", func(r chi.Router) {
			r.Get("/", s.cfg.ParticipantHandlers.HandleList)
			r.Post("/", s.cfg.ParticipantHandlers.HandleCreate)
			r.Put("/{id}", s.cfg.ParticipantHandlers.HandleUpdate)
			r.Delete("/{id}", s.cfg.ParticipantHandlers.HandleDelete)
			r.Post("/{id}/toggle", s.cfg.ParticipantHandlers.HandleToggle)
		})

		r.Route("/race", func(r chi.Router) {
			r.Post("/start", s.cfg.RaceHandlers.HandleStart)
			r.Post("/cancel", s.cfg.RaceHandlers.HandleCancel)
			r.Get("/status", s.cfg.RaceHandlers.HandleStatus)
			r.Get("/replay", s.cfg.RaceHandlers.HandleReplay)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.cfg.HistoryHandlers.HandleList)
			r.Delete("/", s.cfg.HistoryHandlers.HandleClear)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.cfg.StatsHandlers.HandleStats)
			r.Get("/fairness", s.cfg.StatsHandlers.HandleFairness)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.cfg.SettingsHandlers.HandleGetAll)
			r.Put("/{key}", s.cfg.SettingsHandlers.HandleUpdate)
			r.Post("/reset", s.cfg.SettingsHandlers.HandleReset)
		})
	})

	// Embedded UI at the root; API routes above take precedence
	if ui, err := embedded.UI(); err == nil {
		s.router.Handle("/*", http.FileServer(http.FS(ui)))
	} else {
		s.log.Warn().Err(err).Msg("Embedded UI unavailable")
	}
}

// Router exposes the router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
