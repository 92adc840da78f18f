// Package stats derives win statistics and streaks from the win history.
// Everything here is a pure function of its inputs; the handlers feed it the
// history and roster repositories' current state.
package stats

import (
	"math"

	"github.com/aristath/paddock/internal/modules/history"
	"github.com/aristath/paddock/internal/modules/participants"
)

// Stat holds the derived statistics for one participant id
type Stat struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	WinCount      int     `json:"win_count"`
	Percentage    float64 `json:"percentage"` // of total history, one decimal
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	Removed       bool    `json:"removed"` // participant record no longer exists
}

// Compute derives win counts, percentages and streaks for every participant
// in the roster plus every id that appears in history but was since removed.
//
// Streaks are found in a single chronological scan tracking a running
// (id, count) pair: on every id change the run is flushed into that id's
// longest streak; the final run additionally becomes that id's current
// streak. Only the trailing run counts as current - everyone else's current
// streak is zero.
func Compute(entries []history.Entry, roster []participants.Participant) map[string]*Stat {
	result := make(map[string]*Stat, len(roster))

	for _, p := range roster {
		result[p.ID] = &Stat{ParticipantID: p.ID, Name: p.Name}
	}

	// Ids in history with no roster record belonged to deleted participants;
	// the snapshotted name is kept but flagged.
	for _, e := range entries {
		if _, ok := result[e.ParticipantID]; !ok {
			name := e.Name
			if name == "" {
				name = history.RemovedParticipantName
			}
			result[e.ParticipantID] = &Stat{
				ParticipantID: e.ParticipantID,
				Name:          name,
				Removed:       true,
			}
		}
	}

	total := len(entries)
	if total == 0 {
		return result
	}

	var runID string
	runLength := 0

	flush := func() {
		if runLength == 0 {
			return
		}
		if s := result[runID]; s != nil && runLength > s.LongestStreak {
			s.LongestStreak = runLength
		}
	}

	for _, e := range entries {
		result[e.ParticipantID].WinCount++

		if e.ParticipantID == runID {
			runLength++
			continue
		}
		flush()
		runID = e.ParticipantID
		runLength = 1
	}

	// The final run is both a longest-streak candidate and the only run that
	// counts as current.
	flush()
	if s := result[runID]; s != nil {
		s.CurrentStreak = runLength
	}

	for _, s := range result {
		s.Percentage = roundOneDecimal(float64(s.WinCount) / float64(total) * 100)
	}

	return result
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
