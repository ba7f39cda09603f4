// internal/group/group.go
package group

import "time"

// FlagsPerGroup is the largest number of buttons one frame carries (BYTE[5]).
const FlagsPerGroup = 40

// Group is one unit of transmission: up to two encoders plus their buttons,
// or up to 40 buttons. Groups live for the whole run.
type Group struct {
	Name  string
	Index uint8 // CAN-FIX data index; addressing is derived from it

	Encoders []*EncoderChannel
	Buttons  []*ButtonChannel

	Changed        bool
	TicksSinceSend int
}

// Due advances the heartbeat counter and reports whether the group must be
// transmitted this tick: it changed, or more than heartbeat ticks passed
// since its last send.
func (g *Group) Due(heartbeat int) bool {
	g.TicksSinceSend++
	return g.Changed || g.TicksSinceSend > heartbeat
}

// Numbers returns the shaped encoder values in order.
func (g *Group) Numbers() []float64 {
	out := make([]float64, len(g.Encoders))
	for i, e := range g.Encoders {
		out[i] = float64(e.Shaped)
	}
	return out
}

// Flags returns the button values in order.
func (g *Group) Flags() []bool {
	out := make([]bool, len(g.Buttons))
	for i, b := range g.Buttons {
		out[i] = b.Value()
	}
	return out
}

// Sent records a successful transmission.
func (g *Group) Sent(now time.Time, guard time.Duration) {
	g.Changed = false
	g.TicksSinceSend = 0
	for _, e := range g.Encoders {
		e.Consume()
	}
	for _, b := range g.Buttons {
		b.Delivered(now, guard)
	}
}

// Failed records a failed transmission. Encoder deltas are consumed; the
// change flag stays so the group goes out again on the next tick.
func (g *Group) Failed() {
	for _, e := range g.Encoders {
		e.Consume()
	}
}

// Expire runs every button's deferred one-shot clear.
func (g *Group) Expire(now time.Time) {
	for _, b := range g.Buttons {
		if b.Expire(now) {
			g.Changed = true
		}
	}
}
