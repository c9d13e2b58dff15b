// Package activity tracks per-identifier indicators that light up when a frame
// is emitted and decay back to idle after a fixed delay.
package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
)

const (
	DefaultDecayDelay  = 500 * time.Millisecond
	DefaultGridColumns = 8
)

// Phase is the indicator state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "idle"
}

// Slot is a permanent grid position assigned on first sight of an identifier.
type Slot struct {
	Index int
	Row   int
	Col   int
}

// Indicator is the render-ready state of one identifier.
type Indicator struct {
	ID       string
	Slot     Slot
	Phase    Phase
	LastData string
	Hits     int
}

// Decay asks the tracker to return ID to idle. Session pins it to the tracker
// epoch that scheduled it.
type Decay struct {
	Session string
	ID      string
}

// Deferrer delivers a Decay back to the tracker's loop after delay.
type Deferrer interface {
	Defer(delay time.Duration, d Decay)
}

// DeferFunc adapts a function to Deferrer.
type DeferFunc func(delay time.Duration, d Decay)

func (f DeferFunc) Defer(delay time.Duration, d Decay) { f(delay, d) }

// Tracker owns the ActivityState for one session.
type Tracker struct {
	columns  int
	delay    time.Duration
	deferrer Deferrer
	logger   zerolog.Logger

	session    string
	order      []string
	indicators map[string]*Indicator
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithColumns sets the grid width used for row-major slot placement.
func WithColumns(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.columns = n
		}
	}
}

// WithDecayDelay sets how long an indicator stays active.
func WithDecayDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.delay = d
		}
	}
}

// NewTracker creates a tracker that schedules decays through deferrer.
func NewTracker(deferrer Deferrer, opts ...Option) *Tracker {
	t := &Tracker{
		columns:  DefaultGridColumns,
		delay:    DefaultDecayDelay,
		deferrer: deferrer,
		logger:   logging.Component("activity"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// Session returns the token of the current epoch.
func (t *Tracker) Session() string {
	return t.session
}

// Columns returns the grid width.
func (t *Tracker) Columns() int {
	return t.columns
}

// OnFrameEmitted marks the frame's identifier active and schedules its decay.
func (t *Tracker) OnFrameEmitted(frame models.Frame) {
	t.Activate(frame.ArbitrationID, frame.DataField)
}

// OnReset clears the tracker when playback is reset.
func (t *Tracker) OnReset() {
	t.Reset()
}

// Activate lights id and returns its slot. A first-seen id gets the next slot.
func (t *Tracker) Activate(id, data string) Slot {
	ind, ok := t.indicators[id]
	if !ok {
		n := len(t.order)
		ind = &Indicator{
			ID:   id,
			Slot: Slot{Index: n, Row: n / t.columns, Col: n % t.columns},
		}
		t.indicators[id] = ind
		t.order = append(t.order, id)
	}
	ind.Phase = PhaseActive
	ind.LastData = data
	ind.Hits++

	if t.deferrer != nil {
		t.deferrer.Defer(t.delay, Decay{Session: t.session, ID: id})
	}
	return ind.Slot
}

// ApplyDecay returns the identifier to idle. Decays from an earlier epoch, or
// for an identifier that is already idle, change nothing. It reports whether
// the indicator changed.
func (t *Tracker) ApplyDecay(d Decay) bool {
	if d.Session != t.session {
		t.logger.Trace().
			Str("id", d.ID).
			Str("stale_session", d.Session).
			Msg("dropping stale decay")
		return false
	}
	ind, ok := t.indicators[d.ID]
	if !ok || ind.Phase == PhaseIdle {
		return false
	}
	ind.Phase = PhaseIdle
	return true
}

// Reset discards every slot and starts a new epoch.
func (t *Tracker) Reset() {
	t.session = uuid.NewString()
	t.order = nil
	t.indicators = make(map[string]*Indicator)
}

// Lookup returns the indicator for id.
func (t *Tracker) Lookup(id string) (Indicator, bool) {
	ind, ok := t.indicators[id]
	if !ok {
		return Indicator{}, false
	}
	return *ind, true
}

// Indicators returns every indicator in slot order.
func (t *Tracker) Indicators() []Indicator {
	out := make([]Indicator, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.indicators[id])
	}
	return out
}

// IDs returns the tracked identifiers in slot order.
func (t *Tracker) IDs() []string {
	return append([]string(nil), t.order...)
}

// ActiveCount returns how many indicators are currently active.
func (t *Tracker) ActiveCount() int {
	n := 0
	for _, ind := range t.indicators {
		if ind.Phase == PhaseActive {
			n++
		}
	}
	return n
}
