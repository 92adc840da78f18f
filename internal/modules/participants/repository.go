package participants

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles participant database operations.
// Participants are stored in roster.db and exposed in a stable order
// (creation time, then id) so selection and rendering see the same list.
type Repository struct {
	db  *sql.DB        // roster.db - participants table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new participants repository.
//
// Parameters:
//   - db: Database connection to roster.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "participants").Logger(),
	}
}

// Create inserts a new participant
func (r *Repository) Create(p Participant) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`
		INSERT INTO participants (id, name, color, enabled, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Color, boolToInt(p.Enabled), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create participant %s: %w", p.ID, err)
	}
	return nil
}

// Update updates a participant's mutable fields. The id is immutable.
func (r *Repository) Update(p Participant) error {
	res, err := r.db.Exec(`
		UPDATE participants SET name = ?, color = ?, enabled = ? WHERE id = ?
	`, p.Name, p.Color, boolToInt(p.Enabled), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of participant %s: %w", p.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("participant %s not found", p.ID)
	}
	return nil
}

// Delete removes a participant from the roster.
// History entries referencing the participant are untouched.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM participants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of participant %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("participant %s not found", id)
	}
	return nil
}

// GetByID retrieves a participant by id.
// Returns nil if the participant doesn't exist (not an error).
func (r *Repository) GetByID(id string) (*Participant, error) {
	row := r.db.QueryRow(`
		SELECT id, name, color, enabled, created_at
		FROM participants WHERE id = ?
	`, id)

	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return p, nil
}

// All retrieves all participants in stable order
func (r *Repository) All() ([]Participant, error) {
	return r.query("SELECT id, name, color, enabled, created_at FROM participants ORDER BY created_at, rowid")
}

// Enabled retrieves enabled participants in stable order
func (r *Repository) Enabled() ([]Participant, error) {
	return r.query("SELECT id, name, color, enabled, created_at FROM participants WHERE enabled = 1 ORDER BY created_at, rowid")
}

// Count returns the roster size
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM participants").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *Repository) query(q string) ([]Participant, error) {
	rows, err := r.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var result []Participant
	for rows.Next() {
		var p Participant
		var enabled int
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &enabled, &p.CreatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan participant row")
			continue
		}
		p.Enabled = enabled != 0
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipant(row rowScanner) (*Participant, error) {
	var p Participant
	var enabled int
	if err := row.Scan(&p.ID, &p.Name, &p.Color, &enabled, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Enabled = enabled != 0
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
