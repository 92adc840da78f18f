package race

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/paddock/internal/events"
)

// ReplayPosition is one participant's position in a recorded frame
type ReplayPosition struct {
	ParticipantID string  `msgpack:"id" json:"participant_id"`
	Position      float64 `msgpack:"p" json:"position"`
}

// ReplayFrame is one recorded animation frame
type ReplayFrame struct {
	ElapsedMs float64          `msgpack:"t" json:"elapsed_ms"`
	Positions []ReplayPosition `msgpack:"pos,omitempty" json:"positions,omitempty"`
	Rotation  float64          `msgpack:"rot,omitempty" json:"rotation,omitempty"`
}

// Replay is a full frame-by-frame recording of one race. Frames are encoded
// as msgpack for storage; at ~60fps a 20s race is around 1200 frames, which
// msgpack keeps to a few tens of kilobytes.
type Replay struct {
	Mode       string        `msgpack:"mode" json:"mode"`
	WinnerID   string        `msgpack:"winner" json:"winner_id"`
	DurationMs float64       `msgpack:"dur" json:"duration_ms"`
	Frames     []ReplayFrame `msgpack:"frames" json:"frames"`
}

// Recorder accumulates frames during a race. The driver's frame callback
// feeds it; the service persists the finished recording.
type Recorder struct {
	mu     sync.Mutex
	frames []ReplayFrame
}

// NewRecorder creates an empty frame recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reset discards all recorded frames, ready for a new race
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// Record appends one frame
func (r *Recorder) Record(frame *events.RaceFrameData) {
	rf := ReplayFrame{
		ElapsedMs: frame.ElapsedMs,
		Rotation:  frame.Rotation,
	}
	for _, pos := range frame.Positions {
		rf.Positions = append(rf.Positions, ReplayPosition{
			ParticipantID: pos.ParticipantID,
			Position:      pos.Position,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, rf)
}

// Frames returns a copy of the recorded frames
func (r *Recorder) Frames() []ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ReplayFrame, len(r.frames))
	copy(out, r.frames)
	return out
}

// ReplayRepository persists race replays in cache.db
type ReplayRepository struct {
	db  *sql.DB        // cache.db - replays table
	log zerolog.Logger // Structured logger
}

// NewReplayRepository creates a new replay repository
func NewReplayRepository(db *sql.DB, log zerolog.Logger) *ReplayRepository {
	return &ReplayRepository{
		db:  db,
		log: log.With().Str("repository", "replays").Logger(),
	}
}

// Save stores a replay, msgpack-encoded
func (r *ReplayRepository) Save(replay *Replay) error {
	data, err := msgpack.Marshal(replay)
	if err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO replays (mode, winner_id, duration_ms, frame_count, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, replay.Mode, replay.WinnerID, replay.DurationMs, len(replay.Frames), data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	return nil
}

// Latest retrieves the most recent replay for a mode.
// Returns nil if no replay exists (not an error).
func (r *ReplayRepository) Latest(mode string) (*Replay, error) {
	var data []byte
	err := r.db.QueryRow(`
		SELECT data FROM replays WHERE mode = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, mode).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest replay: %w", err)
	}

	var replay Replay
	if err := msgpack.Unmarshal(data, &replay); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	return &replay, nil
}

// Prune keeps only the newest keep replays per mode. Run by the nightly
// maintenance job; replays are ephemeral presentation data.
func (r *ReplayRepository) Prune(keep int) error {
	_, err := r.db.Exec(`
		DELETE FROM replays WHERE id NOT IN (
			SELECT id FROM replays AS newest
			WHERE newest.mode = replays.mode
			ORDER BY newest.created_at DESC, newest.id DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune replays: %w", err)
	}
	return nil
}
