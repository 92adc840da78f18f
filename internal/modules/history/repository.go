package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles win-history database operations.
// The history is append-only apart from the rolling-window eviction: every
// insert trims the table back to WindowSize entries, oldest first. Sequence
// numbers are assigned by AUTOINCREMENT and are monotonic across evictions.
type Repository struct {
	db  *sql.DB        // history.db - history table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new history repository.
//
// Parameters:
//   - db: Database connection to history.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Record appends a win and enforces the rolling window, returning the new
// entry's sequence number. Insert and trim run in one transaction so a crash
// can't leave the window oversized.
func (r *Repository) Record(participantID, name string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO history (participant_id, name, created_at)
		VALUES (?, ?, ?)
	`, participantID, name, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record history entry: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history sequence: %w", err)
	}

	// Evict everything older than the newest WindowSize entries.
	if _, err := tx.Exec(`
		DELETE FROM history WHERE seq NOT IN (
			SELECT seq FROM history ORDER BY seq DESC LIMIT ?
		)
	`, WindowSize); err != nil {
		return 0, fmt.Errorf("failed to trim history window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit history entry: %w", err)
	}

	return seq, nil
}

// All retrieves the history in chronological order (oldest first)
func (r *Repository) All() ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT seq, participant_id, name, created_at
		FROM history ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.ParticipantID, &e.Name, &e.CreatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan history row")
			continue
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return result, nil
}

// LastWinnerID returns the most recent winner's participant id.
// Returns empty string if the history is empty (not an error).
func (r *Repository) LastWinnerID() (string, error) {
	var id string
	err := r.db.QueryRow("SELECT participant_id FROM history ORDER BY seq DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last winner: %w", err)
	}
	return id, nil
}

// Count returns the number of retained entries
func (r *Repository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// Clear wipes the history, returning the number of removed entries.
// Sequence numbers keep counting: AUTOINCREMENT never reuses them.
func (r *Repository) Clear() (int64, error) {
	res, err := r.db.Exec("DELETE FROM history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared history: %w", err)
	}
	return removed, nil
}
