// Package settings provides key-value application settings stored in
// config.db. Settings are strings in storage, converted to typed values by
// the repository; the service validates and clamps raceable values.
package settings

// Setting keys used across the application
const (
	KeyRaceDurationMs = "race_duration_ms"
	KeyAnimationSpeed = "animation_speed"
	KeyRaceMode       = "race_mode"
	KeyTrackLength    = "track_length"
	KeySoundEnabled   = "sound_enabled"
	KeyEffectsEnabled = "effects_enabled"
	KeyTheme          = "theme"
)

// Race duration bounds in milliseconds. Values outside are clamped, not
// rejected: the UI slider and the API agree on the same envelope.
const (
	MinRaceDurationMs = 1000
	MaxRaceDurationMs = 20000
)

// Animation speed multiplier bounds
const (
	MinAnimationSpeed = 0.5
	MaxAnimationSpeed = 3.0
)

// Track length bounds in length units. A non-positive length would
// degenerate every motion model's base speed to zero, so the envelope
// clamps well above that.
const (
	MinTrackLength = 100.0
	MaxTrackLength = 10000.0
)

// SettingDefaults holds all default values for configurable settings
var SettingDefaults = map[string]interface{}{
	// Race animation
	KeyRaceDurationMs: 5000.0, // Total race duration in ms (1000-20000)
	KeyAnimationSpeed: 1.0,    // Speed multiplier (0.5-3.0, higher = shorter race)
	KeyRaceMode:       "race", // "race" or "wheel"
	KeyTrackLength:    1000.0, // Track length in length units

	// Presentation (consumed by the UI via the event stream, not by the core)
	KeySoundEnabled:   true,
	KeyEffectsEnabled: true,
	KeyTheme:          "dark",

	// Nightly maintenance
	"maintenance_hour": 3.0, // Daily maintenance hour (0-23)
	"replay_keep":      5.0, // Replays retained per mode

	// S3-compatible backup (disabled until an endpoint is configured)
	"backup_enabled":    false,
	"backup_schedule":   "daily", // "daily" or "weekly"
	"s3_endpoint":       "",
	"s3_region":         "auto",
	"s3_bucket":         "",
	"s3_access_key":     "",
	"s3_secret_key":     "",
	"backup_keep_count": 14.0, // Backups retained remotely
}

// SettingUpdate is the request body for updating a setting
type SettingUpdate struct {
	Value interface{} `json:"value"`
}
