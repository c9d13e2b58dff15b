package playback

import "time"

// DefaultDebounceWindow is the minimum gap between accepted control actions.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer drops control actions that arrive too soon after the last accepted
// one. A single Debouncer is shared by every control surface.
type Debouncer struct {
	window   time.Duration
	now      func() time.Time
	last     time.Time
	accepted bool
}

// NewDebouncer creates a debouncer. A nil now uses time.Now.
func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if now == nil {
		now = time.Now
	}
	return &Debouncer{window: window, now: now}
}

// Allow reports whether an action arriving now is accepted, and records it if so.
func (d *Debouncer) Allow() bool {
	t := d.now()
	if d.accepted && t.Sub(d.last) < d.window {
		return false
	}
	d.last = t
	d.accepted = true
	return true
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
