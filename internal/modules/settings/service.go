package settings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
)

// Service validates and clamps settings on top of the repository, and
// resolves the effective race parameters the driver consumes.
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// RaceParameters are the resolved animation inputs for one race
type RaceParameters struct {
	Mode           string
	Duration       time.Duration
	TrackLength    float64
	SoundEnabled   bool
	EffectsEnabled bool
}

// NewService creates a new settings service
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "settings").Logger(),
	}
}

// GetAll returns every setting, falling back to defaults for unset keys.
// Stored values are strings; each is coerced to its default's type so the
// API always serves consistently typed values.
func (s *Service) GetAll() (map[string]interface{}, error) {
	stored, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(SettingDefaults))
	for key, def := range SettingDefaults {
		result[key] = def
	}
	for key, raw := range stored {
		switch SettingDefaults[key].(type) {
		case float64:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				result[key] = f
			}
		case bool:
			result[key] = raw == "true" || raw == "1" || raw == "yes" || raw == "on"
		default:
			result[key] = raw
		}
	}
	return result, nil
}

// Set validates, clamps and stores a setting value, then publishes a
// SettingsChanged event.
func (s *Service) Set(key string, value interface{}) error {
	if _, known := SettingDefaults[key]; !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	switch key {
	case KeyRaceDurationMs:
		ms, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("setting %s requires a number", key)
		}
		return s.setFloat(key, clampFloat(ms, MinRaceDurationMs, MaxRaceDurationMs))

	case KeyAnimationSpeed:
		mult, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("setting %s requires a number", key)
		}
		return s.setFloat(key, clampFloat(mult, MinAnimationSpeed, MaxAnimationSpeed))

	case KeyTrackLength:
		length, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("setting %s requires a number", key)
		}
		return s.setFloat(key, clampFloat(length, MinTrackLength, MaxTrackLength))

	case KeyRaceMode:
		mode, ok := value.(string)
		if !ok || (mode != "race" && mode != "wheel") {
			return fmt.Errorf("setting %s must be \"race\" or \"wheel\"", key)
		}
		return s.setString(key, mode)
	}

	// Remaining settings are stored as-is with best-effort typing.
	switch v := value.(type) {
	case bool:
		if err := s.repo.SetBool(key, v); err != nil {
			return err
		}
	case string:
		if err := s.repo.Set(key, v, nil); err != nil {
			return err
		}
	default:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("unsupported value type for setting %s", key)
		}
		if err := s.repo.SetFloat(key, f); err != nil {
			return err
		}
	}

	s.publishChange(key, value)
	return nil
}

// Reset deletes every stored setting, reverting everything to defaults
func (s *Service) Reset() error {
	for key := range SettingDefaults {
		if err := s.repo.Delete(key); err != nil {
			return err
		}
	}
	s.publishChange("*", nil)
	return nil
}

// RaceParameters resolves the effective animation inputs: the configured
// duration divided by the animation-speed multiplier (2x speed halves the
// race), clamped back into the valid envelope, plus mode and presentation
// toggles.
func (s *Service) RaceParameters() (RaceParameters, error) {
	durationMs, err := s.repo.GetFloat(KeyRaceDurationMs, SettingDefaults[KeyRaceDurationMs].(float64))
	if err != nil {
		return RaceParameters{}, err
	}
	speed, err := s.repo.GetFloat(KeyAnimationSpeed, SettingDefaults[KeyAnimationSpeed].(float64))
	if err != nil {
		return RaceParameters{}, err
	}
	mode, err := s.repo.GetString(KeyRaceMode, SettingDefaults[KeyRaceMode].(string))
	if err != nil {
		return RaceParameters{}, err
	}
	trackLength, err := s.repo.GetFloat(KeyTrackLength, SettingDefaults[KeyTrackLength].(float64))
	if err != nil {
		return RaceParameters{}, err
	}
	sound, err := s.repo.GetBool(KeySoundEnabled, SettingDefaults[KeySoundEnabled].(bool))
	if err != nil {
		return RaceParameters{}, err
	}
	effects, err := s.repo.GetBool(KeyEffectsEnabled, SettingDefaults[KeyEffectsEnabled].(bool))
	if err != nil {
		return RaceParameters{}, err
	}

	effectiveMs := clampFloat(
		clampFloat(durationMs, MinRaceDurationMs, MaxRaceDurationMs)/clampFloat(speed, MinAnimationSpeed, MaxAnimationSpeed),
		MinRaceDurationMs, MaxRaceDurationMs,
	)

	return RaceParameters{
		Mode:           mode,
		Duration:       time.Duration(effectiveMs) * time.Millisecond,
		TrackLength:    clampFloat(trackLength, MinTrackLength, MaxTrackLength),
		SoundEnabled:   sound,
		EffectsEnabled: effects,
	}, nil
}

// Repo exposes the underlying repository for infrastructure consumers
// (scheduler, backup service) that read their own keys.
func (s *Service) Repo() *Repository {
	return s.repo
}

func (s *Service) setFloat(key string, value float64) error {
	if err := s.repo.SetFloat(key, value); err != nil {
		return err
	}
	s.publishChange(key, value)
	return nil
}

func (s *Service) setString(key, value string) error {
	if err := s.repo.Set(key, value, nil); err != nil {
		return err
	}
	s.publishChange(key, value)
	return nil
}

func (s *Service) publishChange(key string, value interface{}) {
	if s.eventManager == nil {
		return
	}
	s.eventManager.Publish("settings", &events.SettingsChangedData{Key: key, Value: value})
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
