// Package race implements the selection and animation core: winner selection
// with anti-repeat, per-participant motion models, the wheel-spin variant,
// and the frame-loop driver that owns a race from trigger to completion.
package race

import (
	"errors"
	"math/rand"
	"time"

	"github.com/aristath/paddock/internal/modules/participants"
)

// Domain errors surfaced to callers
var (
	// ErrInsufficientParticipants is returned when fewer than 2 enabled
	// participants are available at race-trigger time.
	ErrInsufficientParticipants = errors.New("at least 2 enabled participants are required")
	// ErrRaceInProgress is returned when a race trigger arrives while a race
	// is already running. Never fatal; recoverable by waiting.
	ErrRaceInProgress = errors.New("a race is already in progress")
)

// maxRedraws bounds the anti-repeat retry loop. With n=2 there is a (1/2)^10
// residual probability of an immediate repeat being accepted after all
// redraws fail; this caps worst-case latency instead of looping forever.
const maxRedraws = 10

// Selector picks race winners. It holds its own random source so tests can
// inject a seeded one and force deterministic outcomes.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector with the given random source.
// Passing nil uses a time-seeded source.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// SelectWinner draws a winner uniformly from the enabled participants,
// redrawing up to maxRedraws times when the draw matches lastWinnerID.
// Every draw is over the full set, so long-run selection stays uniform;
// only the immediate repeat is suppressed. lastWinnerID may be empty when
// there is no history yet.
//
// Pure apart from the selector's random source; no state is mutated.
func (s *Selector) SelectWinner(enabled []participants.Participant, lastWinnerID string) (participants.Participant, error) {
	if len(enabled) < 2 {
		return participants.Participant{}, ErrInsufficientParticipants
	}

	pick := enabled[s.rng.Intn(len(enabled))]
	if lastWinnerID == "" {
		return pick, nil
	}

	for attempt := 0; attempt < maxRedraws && pick.ID == lastWinnerID; attempt++ {
		pick = enabled[s.rng.Intn(len(enabled))]
	}

	// If every redraw matched, accept the repeat rather than loop forever.
	return pick, nil
}
