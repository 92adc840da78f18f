package race

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/paddock/internal/events"
	"github.com/aristath/paddock/internal/modules/participants"
)

func newTestDriver(seed int64) *Driver {
	d := NewDriver(rand.New(rand.NewSource(seed)), zerolog.Nop())
	d.SetFrameInterval(2 * time.Millisecond)
	return d
}

func TestDriverRunsRaceToCompletion(t *testing.T) {
	d := newTestDriver(1)
	roster := makeRoster(4)

	var mu sync.Mutex
	var frames []*events.RaceFrameData
	done := make(chan participants.Participant, 1)

	err := d.Start(roster, StartOptions{
		Duration:    150 * time.Millisecond,
		TrackLength: 1000,
		OnFrame: func(f *events.RaceFrameData) {
			mu.Lock()
			frames = append(frames, f)
			mu.Unlock()
		},
		OnComplete: func(winner participants.Participant, timedOut bool) {
			assert.False(t, timedOut)
			done <- winner
		},
	})
	require.NoError(t, err)
	require.True(t, d.Running())

	select {
	case winner := <-done:
		assert.Equal(t, d.Winner().ID, winner.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("race did not complete")
	}

	assert.Eventually(t, func() bool { return !d.Running() }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, frames)
	for _, f := range frames {
		assert.Len(t, f.Positions, len(roster))
	}
}

func TestDriverRejectsConcurrentStart(t *testing.T) {
	d := newTestDriver(2)
	roster := makeRoster(3)

	var completions int32
	require.NoError(t, d.Start(roster, StartOptions{
		Duration:    100 * time.Millisecond,
		TrackLength: 1000,
		OnComplete: func(participants.Participant, bool) {
			atomic.AddInt32(&completions, 1)
		},
	}))

	// Rapid repeated trigger while running must be a rejected no-op.
	err := d.Start(roster, StartOptions{Duration: 100 * time.Millisecond, TrackLength: 1000})
	assert.ErrorIs(t, err, ErrRaceInProgress)

	assert.Eventually(t, func() bool { return !d.Running() }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))
}

func TestDriverOnStartFiresOnlyWhenAccepted(t *testing.T) {
	d := newTestDriver(8)
	roster := makeRoster(3)

	var starts int32
	opts := StartOptions{
		Duration:    10 * time.Second,
		TrackLength: 1000,
		OnStart: func() {
			atomic.AddInt32(&starts, 1)
		},
	}

	require.NoError(t, d.Start(roster, opts))
	defer d.Cancel()
	assert.Equal(t, int32(1), atomic.LoadInt32(&starts))

	// A rejected re-entrant trigger must not fire the hook again.
	assert.ErrorIs(t, d.Start(roster, opts), ErrRaceInProgress)
	assert.Equal(t, int32(1), atomic.LoadInt32(&starts))
}

func TestDriverRequiresTwoParticipants(t *testing.T) {
	d := newTestDriver(3)

	err := d.Start(makeRoster(1), StartOptions{Duration: time.Second, TrackLength: 1000})
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
	assert.False(t, d.Running())
}

func TestDriverFinalizeRunsOnce(t *testing.T) {
	d := newTestDriver(4)

	var completions int32
	require.NoError(t, d.Start(makeRoster(3), StartOptions{
		Duration:    10 * time.Second,
		TrackLength: 1000,
		OnComplete: func(participants.Participant, bool) {
			atomic.AddInt32(&completions, 1)
		},
	}))

	assert.True(t, d.finalize(false))
	assert.False(t, d.finalize(false))
	assert.False(t, d.finalize(true))

	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))
	assert.False(t, d.Running())
}

func TestDriverCancelStopsWithoutCompletion(t *testing.T) {
	d := newTestDriver(5)

	var completions int32
	require.NoError(t, d.Start(makeRoster(3), StartOptions{
		Duration:    10 * time.Second,
		TrackLength: 1000,
		OnComplete: func(participants.Participant, bool) {
			atomic.AddInt32(&completions, 1)
		},
	}))

	d.Cancel()
	assert.False(t, d.Running())

	// Cancel again: idempotent no-op.
	d.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&completions))

	// The driver is reusable after a cancel.
	require.NoError(t, d.Start(makeRoster(3), StartOptions{Duration: 50 * time.Millisecond, TrackLength: 1000}))
	assert.Eventually(t, func() bool { return !d.Running() }, time.Second, 5*time.Millisecond)
}

func TestDriverWheelModePublishesRotation(t *testing.T) {
	d := newTestDriver(6)
	roster := makeRoster(6)

	var mu sync.Mutex
	var lastRotation float64
	done := make(chan struct{})

	require.NoError(t, d.Start(roster, StartOptions{
		Mode:     ModeWheel,
		Duration: 100 * time.Millisecond,
		OnFrame: func(f *events.RaceFrameData) {
			mu.Lock()
			assert.Empty(t, f.Positions)
			assert.GreaterOrEqual(t, f.Rotation, lastRotation)
			lastRotation = f.Rotation
			mu.Unlock()
		},
		OnComplete: func(participants.Participant, bool) {
			close(done)
		},
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wheel spin did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, lastRotation, 0.0)
}

func TestDriverWinnerComesFromPool(t *testing.T) {
	d := newTestDriver(7)
	roster := makeRoster(5)

	require.NoError(t, d.Start(roster, StartOptions{Duration: 10 * time.Second, TrackLength: 1000}))
	defer d.Cancel()

	found := false
	for _, p := range roster {
		if p.ID == d.Winner().ID {
			found = true
		}
	}
	assert.True(t, found)
}
