package race

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/paddock/internal/events"
	"github.com/aristath/paddock/internal/modules/participants"
)

// Mode selects the animation variant
type Mode string

const (
	// ModeRace animates per-participant positions along a track
	ModeRace Mode = "race"
	// ModeWheel animates a single spinning wheel (legacy variant)
	ModeWheel Mode = "wheel"
)

// DefaultFrameInterval approximates a 60fps display refresh. The driver's
// ticker is the host's frame primitive; motion models only ever see measured
// wall-clock deltas, so cadence drift does not distort the animation.
const DefaultFrameInterval = 16 * time.Millisecond

// safetyMargin is how long past the configured duration the safety timer
// waits before force-finalizing a race whose frame loop stalled.
const safetyMargin = time.Second

// CompletionFunc is invoked exactly once per race with the winner.
// timedOut is true when the safety timer finalized the race instead of the
// frame loop; that path indicates a stalled loop and is logged as a warning.
type CompletionFunc func(winner participants.Participant, timedOut bool)

// FrameFunc receives every rendered frame. Optional; a race with no frame
// consumer still runs to completion.
type FrameFunc func(frame *events.RaceFrameData)

// StartOptions configures one race run
type StartOptions struct {
	Mode         Mode
	Duration     time.Duration
	TrackLength  float64
	LastWinnerID string
	OnStart      func()
	OnComplete   CompletionFunc
	OnFrame      FrameFunc
}

// Driver owns the race lifecycle: Idle -> Running -> Idle, where the return
// to Idle happens via natural completion, safety-timeout completion, or an
// explicit Cancel. All three converge on the same guarded finalize path, so
// the completion callback can never fire twice for one race.
type Driver struct {
	selector      *Selector
	rng           *rand.Rand
	frameInterval time.Duration
	log           zerolog.Logger

	mu         sync.Mutex
	running    bool
	finalized  bool
	mode       Mode
	states     []*MotionState
	wheel      *WheelState
	winner     participants.Participant
	startedAt  time.Time
	duration   time.Duration
	stopCh     chan struct{}
	safety     *time.Timer
	onComplete CompletionFunc
	onFrame    FrameFunc
}

// NewDriver creates a race driver. rng seeds both selection and motion-model
// construction; passing nil uses a time-seeded source.
func NewDriver(rng *rand.Rand, log zerolog.Logger) *Driver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Driver{
		selector:      NewSelector(rng),
		rng:           rng,
		frameInterval: DefaultFrameInterval,
		log:           log.With().Str("component", "race_driver").Logger(),
	}
}

// SetFrameInterval overrides the frame cadence. Used by tests to run races
// at compressed timescales.
func (d *Driver) SetFrameInterval(interval time.Duration) {
	d.frameInterval = interval
}

// Running reports whether a race is in progress
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Winner returns the pre-selected winner of the current or last race
func (d *Driver) Winner() participants.Participant {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner
}

// Start begins a race. It selects the winner up front, constructs one motion
// model per participant (or a wheel state), and enters the frame loop.
//
// Returns ErrRaceInProgress when a race is already running (re-entrant
// triggers are rejected no-ops; this is what stops rapid repeated triggers
// from starting overlapping races) and ErrInsufficientParticipants when
// fewer than 2 enabled participants are supplied. On either error nothing
// has been mutated and no callback has fired.
//
// OnStart runs only when the start is accepted, before the first frame is
// produced, so callers can reset per-race state and announce the race
// without frames racing ahead of the announcement.
func (d *Driver) Start(enabled []participants.Participant, opts StartOptions) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrRaceInProgress
	}

	winner, err := d.selector.SelectWinner(enabled, opts.LastWinnerID)
	if err != nil {
		d.mu.Unlock()
		return err
	}

	if opts.Mode == "" {
		opts.Mode = ModeRace
	}
	durationMs := float64(opts.Duration.Milliseconds())

	d.running = true
	d.finalized = false
	d.mode = opts.Mode
	d.winner = winner
	d.duration = opts.Duration
	d.startedAt = time.Now()
	d.stopCh = make(chan struct{})
	d.onComplete = opts.OnComplete
	d.onFrame = opts.OnFrame
	d.states = nil
	d.wheel = nil

	switch opts.Mode {
	case ModeWheel:
		winnerIndex := 0
		for i, p := range enabled {
			if p.ID == winner.ID {
				winnerIndex = i
			}
		}
		d.wheel = NewWheelState(len(enabled), winnerIndex, durationMs, d.rng)
	default:
		d.states = make([]*MotionState, 0, len(enabled))
		for _, p := range enabled {
			d.states = append(d.states, NewMotionState(p, p.ID == winner.ID, durationMs, opts.TrackLength, d.rng))
		}
	}

	// Safety timer: force-finalize if the frame loop stalls. Cancelled on
	// normal finalization so it cannot produce a duplicate completion.
	d.safety = time.AfterFunc(opts.Duration+safetyMargin, func() {
		if d.finalize(true) {
			d.log.Warn().
				Dur("duration", opts.Duration).
				Msg("Race finalized by safety timeout; frame loop stalled")
		}
	})

	stopCh := d.stopCh
	startedAt := d.startedAt
	d.mu.Unlock()

	d.log.Info().
		Str("mode", string(opts.Mode)).
		Str("winner", winner.ID).
		Dur("duration", opts.Duration).
		Int("participants", len(enabled)).
		Msg("Race started")

	if opts.OnStart != nil {
		opts.OnStart()
	}

	go d.loop(stopCh, startedAt, durationMs)
	return nil
}

// loop is the per-frame update loop. It measures real elapsed time and frame
// deltas off the wall clock rather than counting ticks, so a delayed tick
// never desynchronizes the animation from the configured duration.
func (d *Driver) loop(stopCh chan struct{}, startedAt time.Time, durationMs float64) {
	ticker := time.NewTicker(d.frameInterval)
	defer ticker.Stop()

	last := startedAt
	first := true

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			var deltaMs float64
			if first {
				// No previous frame to diff against.
				deltaMs = NominalFrameMs
				first = false
			} else {
				deltaMs = float64(now.Sub(last).Microseconds()) / 1000.0
			}
			last = now

			elapsedMs := float64(now.Sub(startedAt).Microseconds()) / 1000.0
			d.step(elapsedMs, deltaMs)

			if elapsedMs >= durationMs {
				d.finalize(false)
				return
			}
		}
	}
}

// step advances every motion model before any position is read, so each
// published frame reflects one consistent time sample.
func (d *Driver) step(elapsedMs, deltaMs float64) {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}

	frame := &events.RaceFrameData{ElapsedMs: elapsedMs}

	if d.mode == ModeWheel {
		d.wheel.Update(elapsedMs, deltaMs)
		frame.Rotation = d.wheel.Rotation
	} else {
		for _, state := range d.states {
			state.Update(elapsedMs, deltaMs)
		}
		frame.Positions = make([]events.FramePosition, 0, len(d.states))
		for _, state := range d.states {
			frame.Positions = append(frame.Positions, events.FramePosition{
				ParticipantID: state.Participant.ID,
				Position:      state.Position,
				Finished:      state.Finished(),
			})
		}
	}

	onFrame := d.onFrame
	d.mu.Unlock()

	if onFrame != nil {
		onFrame(frame)
	}
}

// finalize is the single convergence point for natural completion, timeout
// completion, and nothing else. Guarded so it runs at most once per race.
// Returns true when this call performed the finalization.
func (d *Driver) finalize(timedOut bool) bool {
	d.mu.Lock()
	if !d.running || d.finalized {
		d.mu.Unlock()
		return false
	}
	d.finalized = true
	d.running = false
	if d.safety != nil {
		d.safety.Stop()
	}
	select {
	case <-d.stopCh:
	default:
		close(d.stopCh)
	}
	winner := d.winner
	onComplete := d.onComplete
	d.mu.Unlock()

	d.log.Info().
		Str("winner", winner.ID).
		Bool("timed_out", timedOut).
		Msg("Race finished")

	if onComplete != nil {
		onComplete(winner, timedOut)
	}
	return true
}

// Cancel stops any running race without declaring a winner: it halts the
// frame loop, releases the safety timer, and resets the in-progress flag.
// Idempotent; calling it with no race running is a no-op. This is the
// cleanup path used when leaving the feature or before a fresh start.
func (d *Driver) Cancel() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.finalized = true
	if d.safety != nil {
		d.safety.Stop()
	}
	select {
	case <-d.stopCh:
	default:
		close(d.stopCh)
	}
	d.mu.Unlock()

	d.log.Info().Msg("Race cancelled")
}

// Elapsed returns time since race start, zero when idle
func (d *Driver) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return 0
	}
	return time.Since(d.startedAt)
}
