package race

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/paddock/internal/modules/participants"
)

func makeRoster(n int) []participants.Participant {
	roster := make([]participants.Participant, n)
	for i := range roster {
		roster[i] = participants.Participant{
			ID:      string(rune('a' + i)),
			Name:    "Runner " + string(rune('A'+i)),
			Enabled: true,
		}
	}
	return roster
}

func TestSelectWinnerRequiresTwoParticipants(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))

	_, err := s.SelectWinner(nil, "")
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = s.SelectWinner(makeRoster(1), "")
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = s.SelectWinner(makeRoster(2), "")
	assert.NoError(t, err)
}

func TestSelectWinnerReturnsMemberOfPool(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(2)))
	roster := makeRoster(5)

	for i := 0; i < 100; i++ {
		winner, err := s.SelectWinner(roster, "")
		require.NoError(t, err)

		found := false
		for _, p := range roster {
			if p.ID == winner.ID {
				found = true
			}
		}
		assert.True(t, found, "winner must come from the supplied pool")
	}
}

func TestSelectWinnerSuppressesImmediateRepeat(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(3)))
	roster := makeRoster(5)

	lastID := ""
	for i := 0; i < 1000; i++ {
		winner, err := s.SelectWinner(roster, lastID)
		require.NoError(t, err)
		if lastID != "" {
			assert.NotEqual(t, lastID, winner.ID, "draw %d repeated the previous winner", i)
		}
		lastID = winner.ID
	}
}

func TestSelectWinnerAcceptsRepeatWhenUnavoidable(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(4)))

	// Both slots hold the same participant, so every redraw matches the
	// previous winner. The bounded retry loop must still terminate and
	// accept the repeat.
	p := participants.Participant{ID: "only", Name: "Only", Enabled: true}
	pool := []participants.Participant{p, p}

	winner, err := s.SelectWinner(pool, "only")
	require.NoError(t, err)
	assert.Equal(t, "only", winner.ID)
}

func TestSelectWinnerLongRunDistribution(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(5)))
	roster := makeRoster(4)

	const draws = 20000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		winner, err := s.SelectWinner(roster, "")
		require.NoError(t, err)
		counts[winner.ID]++
	}

	// Uniform expectation is 5000 per participant; allow a wide band so a
	// fair source passes comfortably while a broken one fails hard.
	for _, p := range roster {
		assert.InDelta(t, draws/len(roster), counts[p.ID], float64(draws)*0.05,
			"participant %s win count far from uniform", p.ID)
	}
}
