package race

import (
	"math"
	"math/rand"
)

// Wheel-spin constants. The wheel is the legacy presentation variant: one
// rotation value instead of per-participant positions, same lifecycle.
const (
	minFullSpins = 4
	maxFullSpins = 6
	// segmentJitter keeps landings off segment centers so repeated spins on
	// the same winner don't look identical. Fraction of a segment half-width.
	segmentJitter = 0.7
)

// WheelState is the kinematic state of a wheel spin. Like MotionState, all
// randomness is drawn at construction and Update is deterministic.
//
// Rotation is in radians, monotonically non-decreasing, and lands exactly on
// targetRotation at elapsed >= duration. The pointer sits at angle zero;
// segment i of n spans [i*2pi/n, (i+1)*2pi/n) on the wheel face.
type WheelState struct {
	Rotation float64

	segments       int
	winnerIndex    int
	durationMs     float64
	targetRotation float64
	finished       bool
}

// NewWheelState constructs a wheel spin that lands on the winner's segment.
// winnerIndex addresses the enabled participant list used to draw the wheel.
func NewWheelState(segments, winnerIndex int, durationMs float64, rng *rand.Rand) *WheelState {
	segAngle := 2 * math.Pi / float64(segments)
	spins := minFullSpins + rng.Intn(maxFullSpins-minFullSpins+1)
	jitter := (rng.Float64()*2 - 1) * segmentJitter * segAngle / 2

	// The wheel rotates clockwise under a fixed pointer: the winner's
	// segment center (plus jitter) must end up at angle zero.
	landing := 2*math.Pi - (float64(winnerIndex)+0.5)*segAngle + jitter

	return &WheelState{
		segments:       segments,
		winnerIndex:    winnerIndex,
		durationMs:     durationMs,
		targetRotation: float64(spins)*2*math.Pi + landing,
	}
}

// WinnerIndex returns the enabled-list index the wheel will land on
func (w *WheelState) WinnerIndex() int {
	return w.winnerIndex
}

// TargetRotation returns the total rotation the wheel ends at
func (w *WheelState) TargetRotation() float64 {
	return w.targetRotation
}

// Finished reports whether the wheel has come to rest
func (w *WheelState) Finished() bool {
	return w.finished
}

// Update advances the wheel to elapsedMs. The rotation follows a cubic
// ease-out so the wheel launches fast and coasts to a stop, pinning to the
// target exactly at the configured duration.
func (w *WheelState) Update(elapsedMs, _ float64) {
	if w.finished {
		return
	}
	if elapsedMs >= w.durationMs {
		w.Rotation = w.targetRotation
		w.finished = true
		return
	}

	progress := clamp01(elapsedMs / w.durationMs)
	eased := 1 - math.Pow(1-progress, 3)

	// Monotonic by construction: eased progress never decreases.
	w.Rotation = w.targetRotation * eased
}

// LandedSegment returns the segment index under the pointer for a given
// rotation. Exposed for tests and for the frame renderer's highlight.
func LandedSegment(rotation float64, segments int) int {
	segAngle := 2 * math.Pi / float64(segments)
	// Normalize the face angle under the pointer back to a segment index.
	face := math.Mod(2*math.Pi-math.Mod(rotation, 2*math.Pi), 2*math.Pi)
	return int(face/segAngle) % segments
}
