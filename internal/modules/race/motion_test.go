package race

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/paddock/internal/modules/participants"
)

// runMotion advances a motion state frame by frame at a fixed cadence until
// elapsed passes durationMs, returning every sampled position.
func runMotion(m *MotionState, durationMs, frameMs float64) []float64 {
	var positions []float64
	for elapsed := frameMs; elapsed <= durationMs+frameMs; elapsed += frameMs {
		m.Update(elapsed, frameMs)
		positions = append(positions, m.Position)
	}
	return positions
}

func testParticipant(id string) participants.Participant {
	return participants.Participant{ID: id, Name: "Runner " + id, Enabled: true}
}

func TestWinnerReachesFinishLine(t *testing.T) {
	durations := []float64{1000, 3000, 5000, 12000, 20000}
	trackLengths := []float64{800, 1000, 2500}

	for _, duration := range durations {
		for _, length := range trackLengths {
			rng := rand.New(rand.NewSource(int64(duration + length)))
			m := NewMotionState(testParticipant("w"), true, duration, length, rng)

			runMotion(m, duration, 16)

			assert.True(t, m.Finished(), "duration=%v length=%v", duration, length)
			assert.Equal(t, length, m.Position, "duration=%v length=%v", duration, length)
		}
	}
}

func TestWinnerFinishedByHardClampPoint(t *testing.T) {
	const duration = 5000.0
	const length = 1000.0
	m := NewMotionState(testParticipant("w"), true, duration, length, rand.New(rand.NewSource(7)))

	for elapsed := 16.0; elapsed <= duration; elapsed += 16 {
		m.Update(elapsed, 16)
		if elapsed >= winnerHardClampAt*duration {
			require.True(t, m.Finished(), "winner not finished at elapsed=%v", elapsed)
			require.Equal(t, length, m.Position)
		}
	}
}

func TestChaserEndsInsideLosingBand(t *testing.T) {
	const duration = 5000.0
	const length = 1000.0

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		m := NewMotionState(testParticipant("c"), false, duration, length, rng)

		runMotion(m, duration, 16)

		assert.GreaterOrEqual(t, m.Position, 0.85*length, "seed %d", seed)
		assert.Less(t, m.Position, 0.96*length, "seed %d", seed)
		assert.False(t, m.Finished(), "seed %d: a non-winner never finishes", seed)
	}
}

func TestChaserNeverOvertakesItsCeiling(t *testing.T) {
	const duration = 4000.0
	const length = 1500.0

	for seed := int64(100); seed < 120; seed++ {
		rng := rand.New(rand.NewSource(seed))
		m := NewMotionState(testParticipant("c"), false, duration, length, rng)

		for _, pos := range runMotion(m, duration, 16) {
			assert.Less(t, pos, length, "seed %d", seed)
		}
	}
}

func TestPositionsMonotonicallyNonDecreasing(t *testing.T) {
	const duration = 5000.0
	const length = 1000.0

	for _, isWinner := range []bool{true, false} {
		rng := rand.New(rand.NewSource(11))
		m := NewMotionState(testParticipant("p"), isWinner, duration, length, rng)

		prev := 0.0
		for _, pos := range runMotion(m, duration, 16) {
			require.GreaterOrEqual(t, pos, prev, "winner=%v", isWinner)
			prev = pos
		}
	}
}

func TestOversizedFrameDeltaIsCapped(t *testing.T) {
	const duration = 5000.0
	const length = 1000.0

	// Two identically seeded states: one sees a huge delta, the other the
	// cap. They must land on the same position.
	a := NewMotionState(testParticipant("p"), true, duration, length, rand.New(rand.NewSource(21)))
	b := NewMotionState(testParticipant("p"), true, duration, length, rand.New(rand.NewSource(21)))

	a.Update(100, 5000)
	b.Update(100, MaxFrameDeltaMs)

	assert.Equal(t, b.Position, a.Position)
}

func TestNegativeFrameDeltaIgnored(t *testing.T) {
	m := NewMotionState(testParticipant("p"), true, 5000, 1000, rand.New(rand.NewSource(22)))

	m.Update(100, 16)
	before := m.Position
	m.Update(110, -40)

	assert.Equal(t, before, m.Position)
}

func TestIrregularFrameCadenceStillCompletes(t *testing.T) {
	const duration = 5000.0
	const length = 1000.0
	rng := rand.New(rand.NewSource(33))
	m := NewMotionState(testParticipant("w"), true, duration, length, rng)

	// Wildly uneven deltas, as a backgrounded tab would produce.
	deltas := []float64{16, 200, 8, 1000, 16, 16, 3000, 50}
	elapsed := 0.0
	i := 0
	for elapsed < duration {
		d := deltas[i%len(deltas)]
		elapsed += d
		m.Update(elapsed, d)
		i++
	}

	assert.True(t, m.Finished())
	assert.Equal(t, length, m.Position)
}
