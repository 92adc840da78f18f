package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// FramePosition is one participant's position within a single animation frame
type FramePosition struct {
	ParticipantID string  `json:"participant_id"`
	Position      float64 `json:"position"`
	Finished      bool    `json:"finished"`
}

// RaceStartedData contains data for RaceStarted events
type RaceStartedData struct {
	Mode         string   `json:"mode"`
	DurationMs   float64  `json:"duration_ms"`
	TrackLength  float64  `json:"track_length"`
	Participants []string `json:"participants"`
}

// EventType returns the event type for RaceStartedData
func (d *RaceStartedData) EventType() EventType {
	return RaceStarted
}

// RaceFrameData contains data for RaceFrame events.
// Positions are a single consistent time sample: every motion model is
// updated before the frame is published.
type RaceFrameData struct {
	ElapsedMs float64         `json:"elapsed_ms"`
	Positions []FramePosition `json:"positions"`
	Rotation  float64         `json:"rotation,omitempty"` // wheel mode only
}

// EventType returns the event type for RaceFrameData
func (d *RaceFrameData) EventType() EventType {
	return RaceFrame
}

// RaceFinishedData contains data for RaceFinished events
type RaceFinishedData struct {
	WinnerID       string `json:"winner_id"`
	WinnerName     string `json:"winner_name"`
	WinnerColor    string `json:"winner_color"`
	Seq            int64  `json:"seq"`
	TimedOut       bool   `json:"timed_out"`
	SoundEnabled   bool   `json:"sound_enabled"`
	EffectsEnabled bool   `json:"effects_enabled"`
}

// EventType returns the event type for RaceFinishedData
func (d *RaceFinishedData) EventType() EventType {
	return RaceFinished
}

// RaceCancelledData contains data for RaceCancelled events
type RaceCancelledData struct {
	ElapsedMs float64 `json:"elapsed_ms"`
}

// EventType returns the event type for RaceCancelledData
func (d *RaceCancelledData) EventType() EventType {
	return RaceCancelled
}

// ParticipantChangedData contains data for ParticipantChanged events
type ParticipantChangedData struct {
	ParticipantID string `json:"participant_id"`
	Action        string `json:"action"` // "created", "updated", "deleted", "toggled"
}

// EventType returns the event type for ParticipantChangedData
func (d *ParticipantChangedData) EventType() EventType {
	return ParticipantChanged
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EventType returns the event type for SettingsChangedData
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}

// HistoryClearedData contains data for HistoryCleared events
type HistoryClearedData struct {
	Removed int64 `json:"removed"`
}

// EventType returns the event type for HistoryClearedData
func (d *HistoryClearedData) EventType() EventType {
	return HistoryCleared
}
