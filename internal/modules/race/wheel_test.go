package race

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWheelLandsOnWinnerSegment(t *testing.T) {
	for segments := 2; segments <= 20; segments++ {
		for winnerIndex := 0; winnerIndex < segments; winnerIndex++ {
			rng := rand.New(rand.NewSource(int64(segments*100 + winnerIndex)))
			w := NewWheelState(segments, winnerIndex, 5000, rng)

			w.Update(5000, 16)

			require.True(t, w.Finished())
			require.Equal(t, w.TargetRotation(), w.Rotation)
			assert.Equal(t, winnerIndex, LandedSegment(w.Rotation, segments),
				"segments=%d winner=%d", segments, winnerIndex)
		}
	}
}

func TestWheelSpinsAtLeastFourFullTurns(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		w := NewWheelState(8, 3, 5000, rand.New(rand.NewSource(seed)))
		assert.GreaterOrEqual(t, w.TargetRotation(), float64(minFullSpins)*2*math.Pi, "seed %d", seed)
	}
}

func TestWheelRotationMonotonic(t *testing.T) {
	w := NewWheelState(6, 2, 5000, rand.New(rand.NewSource(9)))

	prev := 0.0
	for elapsed := 16.0; elapsed <= 5000; elapsed += 16 {
		w.Update(elapsed, 16)
		require.GreaterOrEqual(t, w.Rotation, prev, "elapsed=%v", elapsed)
		prev = w.Rotation
	}
}

func TestWheelEaseOutDecelerates(t *testing.T) {
	w := NewWheelState(6, 0, 4000, rand.New(rand.NewSource(10)))

	// First half of the spin covers more rotation than the second half.
	w.Update(2000, 16)
	firstHalf := w.Rotation
	w.Update(4000, 16)
	secondHalf := w.Rotation - firstHalf

	assert.Greater(t, firstHalf, secondHalf)
}

func TestWheelUpdateAfterFinishIsNoOp(t *testing.T) {
	w := NewWheelState(4, 1, 1000, rand.New(rand.NewSource(12)))

	w.Update(1000, 16)
	require.True(t, w.Finished())
	final := w.Rotation

	w.Update(2000, 16)
	assert.Equal(t, final, w.Rotation)
}
