package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/paddock/internal/modules/history"
	"github.com/aristath/paddock/internal/modules/participants"
)

func entriesFor(ids ...string) []history.Entry {
	entries := make([]history.Entry, len(ids))
	for i, id := range ids {
		entries[i] = history.Entry{
			Seq:           int64(i + 1),
			ParticipantID: id,
			Name:          "Name " + id,
		}
	}
	return entries
}

func rosterFor(ids ...string) []participants.Participant {
	roster := make([]participants.Participant, len(ids))
	for i, id := range ids {
		roster[i] = participants.Participant{ID: id, Name: "Name " + id, Enabled: true}
	}
	return roster
}

func TestComputeCountsAndStreaks(t *testing.T) {
	// A A B A A A: A has 5 wins, a current streak of 3 and a longest of 3;
	// B has 1 win and no current streak.
	entries := entriesFor("a", "a", "b", "a", "a", "a")
	result := Compute(entries, rosterFor("a", "b"))

	a := result["a"]
	require.NotNil(t, a)
	assert.Equal(t, 5, a.WinCount)
	assert.Equal(t, 3, a.CurrentStreak)
	assert.Equal(t, 3, a.LongestStreak)
	assert.Equal(t, 83.3, a.Percentage)

	b := result["b"]
	require.NotNil(t, b)
	assert.Equal(t, 1, b.WinCount)
	assert.Equal(t, 0, b.CurrentStreak)
	assert.Equal(t, 1, b.LongestStreak)
	assert.Equal(t, 16.7, b.Percentage)
}

func TestComputeLongestStreakNotCurrent(t *testing.T) {
	// A's longest run happens early; B owns the trailing run.
	entries := entriesFor("a", "a", "a", "a", "b", "b")
	result := Compute(entries, rosterFor("a", "b"))

	assert.Equal(t, 4, result["a"].LongestStreak)
	assert.Equal(t, 0, result["a"].CurrentStreak)
	assert.Equal(t, 2, result["b"].LongestStreak)
	assert.Equal(t, 2, result["b"].CurrentStreak)
}

func TestComputeEmptyHistory(t *testing.T) {
	result := Compute(nil, rosterFor("a", "b"))

	require.Len(t, result, 2)
	for _, s := range result {
		assert.Equal(t, 0, s.WinCount)
		assert.Equal(t, 0.0, s.Percentage)
		assert.Equal(t, 0, s.CurrentStreak)
		assert.Equal(t, 0, s.LongestStreak)
		assert.False(t, s.Removed)
	}
}

func TestComputeIncludesRemovedParticipants(t *testing.T) {
	// "ghost" appears in history but not in the roster.
	entries := entriesFor("a", "ghost", "a")
	result := Compute(entries, rosterFor("a"))

	ghost := result["ghost"]
	require.NotNil(t, ghost)
	assert.True(t, ghost.Removed)
	assert.Equal(t, "Name ghost", ghost.Name)
	assert.Equal(t, 1, ghost.WinCount)
	assert.False(t, result["a"].Removed)
}

func TestComputeRemovedParticipantFallbackName(t *testing.T) {
	entries := []history.Entry{{Seq: 1, ParticipantID: "ghost", Name: ""}}
	result := Compute(entries, nil)

	require.NotNil(t, result["ghost"])
	assert.Equal(t, history.RemovedParticipantName, result["ghost"].Name)
}

func TestComputePercentagesRoundToOneDecimal(t *testing.T) {
	// 1 of 3 wins is 33.333...%, which rounds to 33.3.
	entries := entriesFor("a", "b", "b")
	result := Compute(entries, rosterFor("a", "b"))

	assert.Equal(t, 33.3, result["a"].Percentage)
	assert.Equal(t, 66.7, result["b"].Percentage)
}

func TestComputeRosterSweep(t *testing.T) {
	// Every roster member gets an entry even when only one ever wins.
	entries := entriesFor("a", "a", "a")
	result := Compute(entries, rosterFor("a", "b", "c", "d"))

	require.Len(t, result, 4)
	assert.Equal(t, 100.0, result["a"].Percentage)
	assert.Equal(t, 0.0, result["b"].Percentage)
}
