// Package main is the entry point for Paddock, a local random-selection
// service that animates races among a named roster, persists history and
// settings in SQLite, and streams the animation to attached UI clients.
//
// The application follows the same shape as the rest of the codebase:
// - Repositories over per-concern SQLite databases
// - Services for business logic, wired by constructor injection
// - HTTP handlers per module, mounted by the server package
// - An in-process event bus feeding the SSE stream
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/paddock/internal/config"
	"github.com/aristath/paddock/internal/database"
	"github.com/aristath/paddock/internal/events"
	"github.com/aristath/paddock/internal/modules/history"
	historyhandlers "github.com/aristath/paddock/internal/modules/history/handlers"
	"github.com/aristath/paddock/internal/modules/participants"
	participanthandlers "github.com/aristath/paddock/internal/modules/participants/handlers"
	"github.com/aristath/paddock/internal/modules/race"
	racehandlers "github.com/aristath/paddock/internal/modules/race/handlers"
	"github.com/aristath/paddock/internal/modules/settings"
	settingshandlers "github.com/aristath/paddock/internal/modules/settings/handlers"
	statshandlers "github.com/aristath/paddock/internal/modules/stats/handlers"
	"github.com/aristath/paddock/internal/reliability"
	"github.com/aristath/paddock/internal/scheduler"
	"github.com/aristath/paddock/internal/server"
	"github.com/aristath/paddock/pkg/logger"
)

func main() {
	// Load configuration first to get the log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Paddock")

	// Open the per-concern databases. The win history is the only real
	// record of past races, so it gets the durable ledger profile.
	openDB := func(name string, profile database.DatabaseProfile) *database.DB {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, name+".db"),
			Profile: profile,
			Name:    name,
		})
		if err != nil {
			log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
		}
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
		}
		return db
	}
	configDB := openDB("config", database.ProfileStandard)
	rosterDB := openDB("roster", database.ProfileStandard)
	historyDB := openDB("history", database.ProfileLedger)
	cacheDB := openDB("cache", database.ProfileCache)
	defer configDB.Close()
	defer rosterDB.Close()
	defer historyDB.Close()
	defer cacheDB.Close()
	databases := []*database.DB{configDB, rosterDB, historyDB, cacheDB}

	// Event bus: every module publishes through it, the SSE stream consumes
	eventBus := events.NewBus(log)
	eventManager := events.NewManager(eventBus, log)

	// Repositories
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	rosterRepo := participants.NewRepository(rosterDB.Conn(), log)
	historyRepo := history.NewRepository(historyDB.Conn(), log)
	replayRepo := race.NewReplayRepository(cacheDB.Conn(), log)

	// Services
	settingsService := settings.NewService(settingsRepo, eventManager, log)
	rosterService := participants.NewService(rosterRepo, eventManager, log)
	raceDriver := race.NewDriver(nil, log)
	raceService := race.NewService(raceDriver, settingsService, rosterService, historyRepo, replayRepo, eventManager, log)

	// Background jobs
	maintenanceService := reliability.NewMaintenanceService(databases, replayRepo, settingsRepo, log)
	backupService := reliability.NewBackupService(databases, settingsRepo, cfg.DataDir, log)
	jobScheduler := scheduler.New(maintenanceService, backupService, settingsRepo, log)
	if err := jobScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer jobScheduler.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		EventBus:  eventBus,
		Databases: databases,

		ParticipantHandlers: participanthandlers.NewHandler(rosterService, log),
		RaceHandlers:        racehandlers.NewHandler(raceService, log),
		HistoryHandlers:     historyhandlers.NewHandler(historyRepo, eventManager, log),
		StatsHandlers:       statshandlers.NewHandler(historyRepo, rosterRepo, log),
		SettingsHandlers:    settingshandlers.NewHandler(settingsService, log),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Stop any running race before closing databases so the completion
	// callback can't write to a closed connection.
	raceService.Cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Paddock stopped")
}
