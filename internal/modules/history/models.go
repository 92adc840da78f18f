// Package history provides the rolling window of completed selections.
package history

// WindowSize bounds the history at 500 entries; the oldest are evicted
// first. Sequence numbers keep counting past evictions.
const WindowSize = 500

// RemovedParticipantName labels history entries whose participant record was
// deleted after the win.
const RemovedParticipantName = "removed participant"

// Entry is an immutable record of one completed selection. The name is
// snapshotted at win time so it survives later participant deletion.
type Entry struct {
	Seq           int64  `json:"seq"`
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	CreatedAt     int64  `json:"created_at"` // Unix seconds
}
