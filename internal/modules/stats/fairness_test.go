package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/paddock/internal/modules/history"
)

func TestFairnessInconclusiveBelowSampleSize(t *testing.T) {
	entries := entriesFor("a", "b", "a", "b")
	report := Fairness(entries, rosterFor("a", "b"))

	assert.False(t, report.Conclusive)
	assert.False(t, report.Suspicious)
	assert.Equal(t, 4, report.SampleSize)
}

func TestFairnessUniformHistoryLooksFair(t *testing.T) {
	var entries []history.Entry
	for i := 0; i < 20; i++ {
		entries = append(entries, entriesFor("a", "b", "c")...)
	}

	report := Fairness(entries, rosterFor("a", "b", "c"))

	assert.True(t, report.Conclusive)
	assert.Equal(t, 60, report.SampleSize)
	assert.Equal(t, 0.0, report.Statistic)
	assert.False(t, report.Suspicious)
	assert.InDelta(t, 1.0, report.PValue, 1e-9)
}

func TestFairnessSkewedHistoryIsSuspicious(t *testing.T) {
	// One participant winning 60 of 62 races across 3 contenders is far
	// outside anything a uniform selector produces.
	var entries []history.Entry
	for i := 0; i < 60; i++ {
		entries = append(entries, entriesFor("a")...)
	}
	entries = append(entries, entriesFor("b", "c")...)

	report := Fairness(entries, rosterFor("a", "b", "c"))

	assert.True(t, report.Conclusive)
	assert.True(t, report.Suspicious)
	assert.Less(t, report.PValue, 0.01)
}

func TestFairnessIgnoresDisabledAndRemovedWins(t *testing.T) {
	// "ghost" wins are excluded from the sample entirely.
	var entries []history.Entry
	for i := 0; i < 40; i++ {
		entries = append(entries, entriesFor("a", "b", "ghost")...)
	}

	report := Fairness(entries, rosterFor("a", "b"))

	assert.Equal(t, 80, report.SampleSize)
	assert.False(t, report.Suspicious)
}

func TestFairnessNeedsTwoParticipants(t *testing.T) {
	entries := entriesFor("a", "a", "a")
	report := Fairness(entries, rosterFor("a"))

	assert.False(t, report.Conclusive)
	assert.Equal(t, 0, report.SampleSize)
}
