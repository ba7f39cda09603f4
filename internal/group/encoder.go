// internal/group/encoder.go
package group

import "github.com/tamzrod/panel-canbridge/internal/input"

// EncoderChannel is one rotary control.
type EncoderChannel struct {
	Name string

	RawDelta int // steps not yet transmitted
	Shaped   int // Shape(RawDelta)
	Previous int // shaped value observed on the previous tick
}

// Observe adds the steps read this tick and reshapes. It reports a change
// while either this tick's or the previous tick's value is nonzero, so a
// group is sent once more after the control stops.
func (e *EncoderChannel) Observe(steps int) bool {
	e.RawDelta += steps
	e.Shaped = input.Shape(e.RawDelta)
	changed := e.Shaped != 0 || e.Previous != 0
	e.Previous = e.Shaped
	return changed
}

// Consume zeroes the delta once it has been handed to the transmitter.
func (e *EncoderChannel) Consume() {
	e.RawDelta = 0
	e.Shaped = 0
}
