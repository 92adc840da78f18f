package participants

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
)

// Validation errors returned by the service. Handlers map these to 400s.
var (
	ErrNameRequired  = errors.New("participant name is required")
	ErrNameTooLong   = fmt.Errorf("participant name exceeds %d characters", MaxNameLength)
	ErrNameInvalid   = errors.New("participant name contains non-printable characters")
	ErrColorRequired = errors.New("participant color is required")
	ErrRosterFull    = fmt.Errorf("roster is full (max %d participants)", MaxRosterSize)
	ErrNotFound      = errors.New("participant not found")
)

// Service provides roster management with validation on top of the repository
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new participants service
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "participants").Logger(),
	}
}

// Create validates and adds a new participant to the roster.
// The id is assigned here and is immutable afterwards.
func (s *Service) Create(name, color string, enabled bool) (*Participant, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(color) == "" {
		return nil, ErrColorRequired
	}

	count, err := s.repo.Count()
	if err != nil {
		return nil, err
	}
	if count >= MaxRosterSize {
		return nil, ErrRosterFull
	}

	p := Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Enabled:   enabled,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", p.ID).Str("name", p.Name).Msg("Participant created")
	s.publishChange(p.ID, "created")
	return &p, nil
}

// Update applies a partial update to an existing participant
func (s *Service) Update(id string, update ParticipantUpdate) (*Participant, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if update.Name != nil {
		name, err := validateName(*update.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if update.Color != nil {
		if strings.TrimSpace(*update.Color) == "" {
			return nil, ErrColorRequired
		}
		p.Color = *update.Color
	}
	if update.Enabled != nil {
		p.Enabled = *update.Enabled
	}

	if err := s.repo.Update(*p); err != nil {
		return nil, err
	}

	s.publishChange(id, "updated")
	return p, nil
}

// Toggle flips a participant's enabled flag
func (s *Service) Toggle(id string) (*Participant, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	p.Enabled = !p.Enabled
	if err := s.repo.Update(*p); err != nil {
		return nil, err
	}

	s.publishChange(id, "toggled")
	return p, nil
}

// Delete removes a participant. History entries keep their name snapshot.
func (s *Service) Delete(id string) error {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("Participant deleted")
	s.publishChange(id, "deleted")
	return nil
}

// All returns the full roster
func (s *Service) All() ([]Participant, error) {
	return s.repo.All()
}

// Enabled returns the enabled participants in stable order
func (s *Service) Enabled() ([]Participant, error) {
	return s.repo.Enabled()
}

func (s *Service) publishChange(id, action string) {
	if s.eventManager == nil {
		return
	}
	s.eventManager.Publish("participants", &events.ParticipantChangedData{
		ParticipantID: id,
		Action:        action,
	})
}

// validateName trims the name and enforces the 1-15 printable character rule
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len([]rune(name)) > MaxNameLength {
		return "", ErrNameTooLong
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return "", ErrNameInvalid
		}
	}
	return name, nil
}
