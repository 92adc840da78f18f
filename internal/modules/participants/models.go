// Package participants provides the roster of race participants.
// Participants are referenced (never owned) by races and by history entries;
// a history entry snapshots the name at win time, so deleting a participant
// never touches history.
package participants

// MaxRosterSize is the maximum number of participants in the roster
const MaxRosterSize = 20

// MaxNameLength is the maximum display-name length after trimming
const MaxNameLength = 15

// Participant represents one candidate in the selection pool
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Enabled   bool   `json:"enabled"`
	CreatedAt int64  `json:"created_at"` // Unix seconds
}

// ParticipantUpdate is the mutable subset of a participant.
// The id is immutable once created.
type ParticipantUpdate struct {
	Name    *string `json:"name,omitempty"`
	Color   *string `json:"color,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}
