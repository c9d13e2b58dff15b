// Package playback drives a loaded frame sequence through time at an
// adjustable rate.
//
// The scheduler never owns a real timer. It owns a timer token that changes
// whenever the timer would be started or stopped; the loop that drives it
// schedules a tick for Interval() after every accepted start or tick, and
// hands the token back with the tick. A tick carrying an old token belongs to
// a stopped timer and is ignored. All methods must be called from that one
// loop.
package playback

import (
	"fmt"
	"time"

	"github.com/tOgg1/canplay/internal/models"
)

// DefaultBaseInterval is the tick period at speed 1.
const DefaultBaseInterval = 100 * time.Millisecond

// Speeds is the cycle SetSpeed walks through.
var Speeds = []int{1, 2, 4, 8, 16, 32}

// State is the scheduler state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Sink receives emitted frames and reset notifications.
type Sink interface {
	OnFrameEmitted(frame models.Frame)
	OnReset()
}

// Snapshot is the observable cursor after an operation.
type Snapshot struct {
	State    State
	Position int
	Total    int
	Percent  int
	Running  bool
	Speed    int
	Interval time.Duration

	// Token must accompany the next tick while Running.
	Token uint64

	// Emitted is the frame sent by the tick that produced this snapshot.
	Emitted *models.Frame

	// Finished is set on the tick that reached the end of the sequence.
	Finished bool
}

// IntervalMs returns the tick interval in milliseconds.
func (s Snapshot) IntervalMs() float64 {
	return float64(s.Interval) / float64(time.Millisecond)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s %d/%d %d%% x%d", s.State, s.Position, s.Total, s.Percent, s.Speed)
}

// Scheduler is the playback state machine.
type Scheduler struct {
	base     time.Duration
	speedIdx int
	sinks    []Sink

	seq      *models.Sequence
	state    State
	position int
	percent  int
	token    uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBaseInterval sets the tick period at speed 1.
func WithBaseInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.base = d
		}
	}
}

// WithSpeed selects the starting multiplier. Values outside Speeds are ignored.
func WithSpeed(multiplier int) Option {
	return func(s *Scheduler) {
		if idx := speedIndex(multiplier); idx >= 0 {
			s.speedIdx = idx
		}
	}
}

// WithSink registers a receiver for emitted frames and resets.
func WithSink(sink Sink) Option {
	return func(s *Scheduler) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// NewScheduler creates an Idle scheduler at position 0 with no sequence.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{base: DefaultBaseInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSink registers another receiver.
func (s *Scheduler) AddSink(sink Sink) {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
}

// Load resets the scheduler and then installs seq. The reset happens first so
// no tick can ever run against the replaced sequence.
func (s *Scheduler) Load(seq *models.Sequence) Snapshot {
	s.Reset()
	s.seq = seq
	return s.Snapshot()
}

// Sequence returns the loaded sequence.
func (s *Scheduler) Sequence() *models.Sequence {
	return s.seq
}

// Toggle starts or resumes playback from Idle or Paused, and pauses when Running.
func (s *Scheduler) Toggle() Snapshot {
	switch s.state {
	case StateRunning:
		s.state = StatePaused
		s.token++
	default:
		if s.position >= s.seq.Len() {
			s.position = 0
		}
		if s.position == 0 {
			s.percent = 0
		}
		s.state = StateRunning
		s.token++
	}
	return s.Snapshot()
}

// Tick emits the frame at the cursor. It reports false, changing nothing, when
// the scheduler is not Running or token belongs to a stopped timer.
func (s *Scheduler) Tick(token uint64) (Snapshot, bool) {
	if s.state != StateRunning || token != s.token {
		return s.Snapshot(), false
	}

	total := s.seq.Len()
	var emitted *models.Frame
	if s.position < total {
		frame := s.seq.At(s.position)
		emitted = &frame
		for _, sink := range s.sinks {
			sink.OnFrameEmitted(frame)
		}
		s.percent = s.position * 100 / total
		s.position++
	}

	finished := false
	if s.position >= total {
		s.state = StateIdle
		s.token++
		s.position = 0
		s.percent = 100
		finished = true
	}

	snap := s.Snapshot()
	snap.Emitted = emitted
	snap.Finished = finished
	return snap, true
}

// SetSpeed advances to the next multiplier in Speeds. The new interval applies
// from the next scheduled tick; a tick already scheduled keeps its delay.
func (s *Scheduler) SetSpeed() Snapshot {
	s.speedIdx = (s.speedIdx + 1) % len(Speeds)
	return s.Snapshot()
}

// Reset forces Idle, stops the timer, rewinds to 0 and resets every sink.
func (s *Scheduler) Reset() Snapshot {
	s.state = StateIdle
	s.token++
	s.position = 0
	s.percent = 0
	for _, sink := range s.sinks {
		sink.OnReset()
	}
	return s.Snapshot()
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Speed returns the current multiplier.
func (s *Scheduler) Speed() int {
	return Speeds[s.speedIdx]
}

// Interval returns base/speed.
func (s *Scheduler) Interval() time.Duration {
	return s.base / time.Duration(Speeds[s.speedIdx])
}

// Token returns the current timer token.
func (s *Scheduler) Token() uint64 {
	return s.token
}

// Snapshot returns the current cursor.
func (s *Scheduler) Snapshot() Snapshot {
	return Snapshot{
		State:    s.state,
		Position: s.position,
		Total:    s.seq.Len(),
		Percent:  s.percent,
		Running:  s.state == StateRunning,
		Speed:    s.Speed(),
		Interval: s.Interval(),
		Token:    s.token,
	}
}

func speedIndex(multiplier int) int {
	for i, v := range Speeds {
		if v == multiplier {
			return i
		}
	}
	return -1
}

// ValidSpeed reports whether multiplier is one of Speeds.
func ValidSpeed(multiplier int) bool {
	return speedIndex(multiplier) >= 0
}
