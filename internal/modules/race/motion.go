package race

import (
	"math"
	"math/rand"

	"github.com/aristath/paddock/internal/modules/participants"
)

// Timing constants for the motion model. All times are in milliseconds and
// all distances in track length units.
const (
	// MaxFrameDeltaMs caps a single frame delta so a backgrounded tab or a
	// stalled scheduler cannot teleport a participant past the clamps.
	MaxFrameDeltaMs = 50.0
	// NominalFrameMs is the delta assumed for the first frame of a race,
	// when there is no previous frame to diff against.
	NominalFrameMs = 16.0

	// finalStretchStart is the fraction of the duration where winner and
	// non-winner behavior diverge most.
	finalStretchStart = 0.7
	// winnerHardClampAt is the fraction of the duration after which the
	// winner's position is forced to the finish coordinate.
	winnerHardClampAt = 0.95
	// winnerMaxBoost is the multiplicative velocity boost the winner reaches
	// at the end of the final stretch.
	winnerMaxBoost = 1.8

	// Speed-variation schedule bounds
	minSpeedChanges = 6
	maxSpeedChanges = 10
	minMultiplier   = 0.6
	maxMultiplier   = 1.8

	// Non-winner personality bounds. The ceiling band keeps losers visually
	// plausible but strictly behind the finish line.
	minCeilingFraction = 0.855
	maxCeilingFraction = 0.955
	minSlowdownStart   = 0.3
	maxSlowdownStart   = 0.5
	minSlowdownRate    = 0.5
	maxSlowdownRate    = 0.8

	// proximityBandUnits is the distance from the personal ceiling within
	// which extra velocity damping kicks in.
	proximityBandUnits = 200.0
	// decayVelocityFloor keeps decayed velocity at 30% of its pre-slowdown
	// value so motion never visibly freezes mid-track.
	decayVelocityFloor = 0.3
)

// speedChange is one entry in a participant's speed-variation schedule
type speedChange struct {
	AtMs       float64
	Multiplier float64
}

// MotionState is the per-race kinematic state of one participant. All
// randomness is drawn at construction; Update is deterministic afterwards,
// which makes a race replayable frame by frame.
//
// The state is owned by exactly one Driver run and discarded when the race
// completes or is cancelled.
type MotionState struct {
	Participant participants.Participant
	IsWinner    bool

	// Position is track-relative in [0, trackLength], monotonically
	// non-decreasing within a run. The renderer adds any start offset.
	Position float64
	// Velocity in length units per millisecond
	Velocity float64

	durationMs  float64
	trackLength float64
	baseSpeed   float64

	schedule   []speedChange
	nextChange int

	// Non-winner personality, fixed at construction
	ceiling         float64 // absolute position, in [0.855, 0.955] * trackLength
	slowdownStartMs float64
	slowdownRate    float64

	slowingDown    bool
	preSlowdownVel float64
	finished       bool
}

// NewMotionState constructs the motion state for one participant.
// durationMs and trackLength must be positive. rng supplies all randomness
// the model will ever use (speed schedule, personality parameters).
func NewMotionState(p participants.Participant, isWinner bool, durationMs, trackLength float64, rng *rand.Rand) *MotionState {
	m := &MotionState{
		Participant: p,
		IsWinner:    isWinner,
		durationMs:  durationMs,
		trackLength: trackLength,
		baseSpeed:   trackLength / durationMs,
	}
	m.Velocity = m.baseSpeed

	// 6-10 speed changes, one per T/(n+1) interval, each with an independent
	// multiplier. This produces organic bursts without a noise process.
	count := minSpeedChanges + rng.Intn(maxSpeedChanges-minSpeedChanges+1)
	interval := durationMs / float64(count+1)
	m.schedule = make([]speedChange, count)
	for i := 0; i < count; i++ {
		m.schedule[i] = speedChange{
			AtMs:       float64(i+1) * interval,
			Multiplier: minMultiplier + rng.Float64()*(maxMultiplier-minMultiplier),
		}
	}

	if !isWinner {
		ceilingFraction := minCeilingFraction + rng.Float64()*(maxCeilingFraction-minCeilingFraction)
		m.ceiling = ceilingFraction * trackLength
		m.slowdownStartMs = (minSlowdownStart + rng.Float64()*(maxSlowdownStart-minSlowdownStart)) * durationMs
		m.slowdownRate = minSlowdownRate + rng.Float64()*(maxSlowdownRate-minSlowdownRate)
	}

	return m
}

// Finished reports whether this participant has reached its terminal position
func (m *MotionState) Finished() bool {
	return m.finished
}

// TrackLength returns the track length the model was built for
func (m *MotionState) TrackLength() float64 {
	return m.trackLength
}

// Update advances the motion state to elapsedMs, moving by deltaMs worth of
// travel. deltaMs is clamped to MaxFrameDeltaMs. Deterministic given its
// inputs; safe to drive from a replayed frame log.
func (m *MotionState) Update(elapsedMs, deltaMs float64) {
	if m.finished {
		return
	}
	if deltaMs > MaxFrameDeltaMs {
		deltaMs = MaxFrameDeltaMs
	}
	if deltaMs < 0 {
		deltaMs = 0
	}

	// Apply any schedule entries passed since the last update, in order.
	// Each replaces the current velocity outright.
	for m.nextChange < len(m.schedule) && m.schedule[m.nextChange].AtMs <= elapsedMs {
		m.Velocity = m.baseSpeed * m.schedule[m.nextChange].Multiplier
		m.nextChange++
	}

	if m.IsWinner {
		m.updateWinner(elapsedMs, deltaMs)
	} else {
		m.updateChaser(elapsedMs, deltaMs)
	}
}

// updateWinner advances the pre-selected winner. In the final stretch the
// velocity ramps up and the position is floor-clamped to a pace line, so the
// winner visibly surges and is guaranteed to cross at the configured time.
func (m *MotionState) updateWinner(elapsedMs, deltaMs float64) {
	stretchStart := finalStretchStart * m.durationMs

	if elapsedMs >= winnerHardClampAt*m.durationMs {
		// Guaranteed completion regardless of how irregular the frames were.
		m.Position = m.trackLength
		m.finished = true
		return
	}

	v := m.Velocity
	if elapsedMs >= stretchStart {
		progress := clamp01((elapsedMs - stretchStart) / ((1 - finalStretchStart) * m.durationMs))
		v *= 1.0 + (winnerMaxBoost-1.0)*progress

		m.Position += v * deltaMs

		// Floor-clamp to the pace line so progress stays monotonic and
		// visible even with irregular frame deltas.
		floor := m.trackLength * (finalStretchStart + (1-finalStretchStart)*progress)
		if m.Position < floor {
			m.Position = floor
		}
	} else {
		m.Position += v * deltaMs
	}

	if m.Position >= m.trackLength {
		m.Position = m.trackLength
		m.finished = true
	}
}

// updateChaser advances a non-winner. After its personal slowdown point the
// velocity decays along a convex curve toward a floor, with extra damping as
// it nears its personal ceiling, and in the final stretch the position is
// floor-clamped to a pace line toward the ceiling so every loser ends the
// race inside its plausible-but-behind band.
func (m *MotionState) updateChaser(elapsedMs, deltaMs float64) {
	v := m.Velocity

	if elapsedMs >= m.slowdownStartMs {
		if !m.slowingDown {
			m.slowingDown = true
			m.preSlowdownVel = m.Velocity
		}

		progress := clamp01((elapsedMs - m.slowdownStartMs) / (m.durationMs - m.slowdownStartMs))
		decay := 1.0 - m.slowdownRate*math.Pow(progress, 1.5)
		v = m.preSlowdownVel * decay

		if floor := decayVelocityFloor * m.preSlowdownVel; v < floor {
			v = floor
		}
		if floor := decayVelocityFloor * m.baseSpeed; v < floor {
			v = floor
		}

		// Proximity damping: throttle toward zero inside the last stretch
		// before the personal ceiling so it is approached, not overshot.
		remaining := m.ceiling - m.Position
		if remaining <= 0 {
			v = 0
		} else if remaining < proximityBandUnits {
			v *= remaining / proximityBandUnits
		}
	}

	m.Position += v * deltaMs

	if elapsedMs >= finalStretchStart*m.durationMs {
		// Pace line toward the personal ceiling, mirroring the winner's
		// final-stretch clamp. At elapsed >= duration this lands exactly on
		// the ceiling, which is strictly inside the losing band.
		progress := clamp01((elapsedMs - finalStretchStart*m.durationMs) / ((1 - finalStretchStart) * m.durationMs))
		floor := m.ceiling * (finalStretchStart + (1-finalStretchStart)*progress)
		if m.Position < floor {
			m.Position = floor
		}
	}

	if m.Position > m.ceiling {
		m.Position = m.ceiling
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
