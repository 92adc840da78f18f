package reliability

import (
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/database"
	"github.com/aristath/paddock/internal/modules/race"
	"github.com/aristath/paddock/internal/modules/settings"
	"github.com/aristath/paddock/internal/utils"
)

// MaintenanceService runs the nightly housekeeping pass: WAL checkpoints on
// every database, incremental vacuum, and pruning of stale race replays.
type MaintenanceService struct {
	databases    []*database.DB
	replayRepo   *race.ReplayRepository
	settingsRepo *settings.Repository
	log          zerolog.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	databases []*database.DB,
	replayRepo *race.ReplayRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		databases:    databases,
		replayRepo:   replayRepo,
		settingsRepo: settingsRepo,
		log:          log.With().Str("service", "maintenance").Logger(),
	}
}

// Run executes the maintenance pass. Individual failures are logged and do
// not stop the remaining steps; housekeeping is best-effort.
func (s *MaintenanceService) Run() {
	defer utils.OperationTimer("maintenance_pass", s.log)()
	s.log.Info().Msg("Starting maintenance pass")

	for _, db := range s.databases {
		if err := db.Checkpoint(); err != nil {
			s.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
		if db.Profile() == database.ProfileStandard {
			if _, err := db.Conn().Exec("PRAGMA incremental_vacuum"); err != nil {
				s.log.Warn().Err(err).Str("database", db.Name()).Msg("Incremental vacuum failed")
			}
		}
	}

	keep, err := s.settingsRepo.GetInt("replay_keep", 5)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read replay_keep setting")
		keep = 5
	}
	if err := s.replayRepo.Prune(keep); err != nil {
		s.log.Warn().Err(err).Msg("Replay pruning failed")
	}

	s.log.Info().Msg("Maintenance pass complete")
}
