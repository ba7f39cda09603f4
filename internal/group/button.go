// internal/group/button.go
package group

import "time"

// State is the one-shot state of a button.
type State uint8

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// ButtonChannel is one physical or matrix button.
//
// A repeating button transmits its debounced level. A one-shot button
// transmits a single true pulse per press: the first frame that carries the
// pulse starts a guard timer, later frames carry false, and when the guard
// expires the button returns to Idle whatever its physical level is.
type ButtonChannel struct {
	Name    string
	OneShot bool

	Level   bool // debounced, true = pressed
	Pending bool // value queued for transmission

	state     State
	delivered bool
	clearAt   time.Time
	rearm     bool
}

// State returns the one-shot state.
func (b *ButtonChannel) State() State { return b.state }

// Press records a debounced press edge. It reports whether the owning
// group must be transmitted.
func (b *ButtonChannel) Press() bool {
	b.Level = true
	if !b.OneShot {
		b.Pending = true
		return true
	}
	if b.state == Armed {
		// A new press inside the guard window fires again after the clear.
		b.rearm = true
		return false
	}
	b.Pending = true
	b.state = Armed
	b.delivered = false
	return true
}

// Release records a debounced release edge. Releasing never cancels a
// one-shot pulse.
func (b *ButtonChannel) Release() bool {
	b.Level = false
	if b.OneShot {
		return false
	}
	b.Pending = false
	return true
}

// Value is the boolean to put in the next frame.
func (b *ButtonChannel) Value() bool {
	if b.state == Armed && b.delivered {
		return false
	}
	return b.Pending
}

// Delivered is called after a frame carrying Value() was sent successfully.
func (b *ButtonChannel) Delivered(now time.Time, guard time.Duration) {
	if b.state != Armed || b.delivered || !b.Pending {
		return
	}
	b.delivered = true
	b.clearAt = now.Add(guard)
}

// Expire runs the deferred clear. It reports whether the button changed
// and its group must be transmitted.
func (b *ButtonChannel) Expire(now time.Time) bool {
	if b.state != Armed || !b.delivered || now.Before(b.clearAt) {
		return false
	}
	b.Pending = false
	b.state = Idle
	b.delivered = false
	if b.rearm {
		b.rearm = false
		b.Pending = true
		b.state = Armed
	}
	return true
}
