// Package scheduler runs Paddock's background jobs on cron schedules:
// the nightly maintenance pass and the optional backup upload.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/modules/settings"
	"github.com/aristath/paddock/internal/reliability"
)

// Scheduler owns the cron runner and the registered jobs
type Scheduler struct {
	cron         *cron.Cron
	maintenance  *reliability.MaintenanceService
	backup       *reliability.BackupService
	settingsRepo *settings.Repository
	log          zerolog.Logger
}

// New creates a scheduler over the maintenance and backup services
func New(
	maintenance *reliability.MaintenanceService,
	backup *reliability.BackupService,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		maintenance:  maintenance,
		backup:       backup,
		settingsRepo: settingsRepo,
		log:          log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers jobs from settings and begins the cron runner.
// Schedule settings are read once at startup; changing them takes effect on
// the next restart.
func (s *Scheduler) Start() error {
	maintenanceHour, err := s.settingsRepo.GetInt("maintenance_hour", 3)
	if err != nil {
		return fmt.Errorf("failed to read maintenance hour: %w", err)
	}
	if maintenanceHour < 0 || maintenanceHour > 23 {
		maintenanceHour = 3
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("0 %d * * *", maintenanceHour), s.maintenance.Run); err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	backupSchedule, err := s.settingsRepo.GetString("backup_schedule", "daily")
	if err != nil {
		return fmt.Errorf("failed to read backup schedule: %w", err)
	}
	backupSpec := fmt.Sprintf("30 %d * * *", maintenanceHour) // daily, after maintenance
	if backupSchedule == "weekly" {
		backupSpec = fmt.Sprintf("30 %d * * 0", maintenanceHour)
	}

	if _, err := s.cron.AddFunc(backupSpec, s.runBackup); err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}

	s.cron.Start()
	s.log.Info().
		Int("maintenance_hour", maintenanceHour).
		Str("backup_schedule", backupSchedule).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner, waiting for any running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn().Msg("Timed out waiting for running jobs to finish")
	}
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.backup.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("Scheduled backup failed")
	}
}
