package race

import (
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
	"github.com/aristath/paddock/internal/modules/history"
	"github.com/aristath/paddock/internal/modules/participants"
	"github.com/aristath/paddock/internal/modules/settings"
)

// Service orchestrates one race from the API trigger to the recorded win:
// it resolves settings, loads the enabled roster and last winner, runs the
// driver, and on completion appends the history entry and publishes the
// finish event that the presentation layer (audio, confetti) reacts to.
type Service struct {
	driver       *Driver
	settings     *settings.Service
	roster       *participants.Service
	historyRepo  *history.Repository
	replayRepo   *ReplayRepository
	recorder     *Recorder
	eventManager *events.Manager
	log          zerolog.Logger
}

// Status describes the driver state for the API
type Status struct {
	Running   bool    `json:"running"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// NewService creates a new race service
func NewService(
	driver *Driver,
	settingsService *settings.Service,
	rosterService *participants.Service,
	historyRepo *history.Repository,
	replayRepo *ReplayRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		driver:       driver,
		settings:     settingsService,
		roster:       rosterService,
		historyRepo:  historyRepo,
		replayRepo:   replayRepo,
		recorder:     NewRecorder(),
		eventManager: eventManager,
		log:          log.With().Str("service", "race").Logger(),
	}
}

// Start triggers a race with the current settings and roster.
// Re-entrant calls while a race runs return ErrRaceInProgress untouched;
// no state is mutated on any error path.
func (s *Service) Start() error {
	params, err := s.settings.RaceParameters()
	if err != nil {
		return err
	}

	enabled, err := s.roster.Enabled()
	if err != nil {
		return err
	}

	lastWinnerID, err := s.historyRepo.LastWinnerID()
	if err != nil {
		return err
	}

	mode := ModeRace
	if params.Mode == string(ModeWheel) {
		mode = ModeWheel
	}

	ids := make([]string, 0, len(enabled))
	for _, p := range enabled {
		ids = append(ids, p.ID)
	}

	// Reset and announce only once the driver has accepted the start. A
	// rejected re-entrant trigger must leave the in-flight race's recording
	// untouched, and the started event must precede the first frame.
	return s.driver.Start(enabled, StartOptions{
		Mode:         mode,
		Duration:     params.Duration,
		TrackLength:  params.TrackLength,
		LastWinnerID: lastWinnerID,
		OnStart: func() {
			s.recorder.Reset()
			s.eventManager.Publish("race", &events.RaceStartedData{
				Mode:         string(mode),
				DurationMs:   float64(params.Duration.Milliseconds()),
				TrackLength:  params.TrackLength,
				Participants: ids,
			})
		},
		OnFrame: func(frame *events.RaceFrameData) {
			s.recorder.Record(frame)
			s.eventManager.Publish("race", frame)
		},
		OnComplete: func(winner participants.Participant, timedOut bool) {
			s.finishRace(winner, timedOut, mode, params)
		},
	})
}

// finishRace records the win and announces it. Runs exactly once per race,
// guaranteed by the driver's guarded finalize.
func (s *Service) finishRace(winner participants.Participant, timedOut bool, mode Mode, params settings.RaceParameters) {
	seq, err := s.historyRepo.Record(winner.ID, winner.Name)
	if err != nil {
		// The race still completed; the winner announcement must not be lost
		// because the history write failed.
		s.log.Error().Err(err).Str("winner", winner.ID).Msg("Failed to record history entry")
	}

	if err := s.replayRepo.Save(&Replay{
		Mode:       string(mode),
		WinnerID:   winner.ID,
		DurationMs: float64(params.Duration.Milliseconds()),
		Frames:     s.recorder.Frames(),
	}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to save race replay")
	}

	s.eventManager.Publish("race", &events.RaceFinishedData{
		WinnerID:       winner.ID,
		WinnerName:     winner.Name,
		WinnerColor:    winner.Color,
		Seq:            seq,
		TimedOut:       timedOut,
		SoundEnabled:   params.SoundEnabled,
		EffectsEnabled: params.EffectsEnabled,
	})
}

// Cancel stops any running race without a winner. Safe to call when idle.
func (s *Service) Cancel() {
	if !s.driver.Running() {
		return
	}
	elapsed := s.driver.Elapsed()
	s.driver.Cancel()
	s.eventManager.Publish("race", &events.RaceCancelledData{
		ElapsedMs: float64(elapsed.Milliseconds()),
	})
}

// Status returns the current driver state
func (s *Service) Status() Status {
	return Status{
		Running:   s.driver.Running(),
		ElapsedMs: float64(s.driver.Elapsed().Milliseconds()),
	}
}

// LatestReplay returns the most recent replay for a mode, nil if none exists
func (s *Service) LatestReplay(mode string) (*Replay, error) {
	return s.replayRepo.Latest(mode)
}
