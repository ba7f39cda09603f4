// internal/poller/types.go
package poller

import (
	"fmt"
	"time"
)

// Pull is the bias applied to a direct input line.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// ParsePull converts the config spelling of a pull.
func ParsePull(s string) (Pull, error) {
	switch s {
	case "", "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	case "none":
		return PullNone, nil
	default:
		return PullNone, fmt.Errorf("poller: unknown pull %q", s)
	}
}

// LineSpec describes one direct input: a GPIO pin or a remote discrete input.
type LineSpec struct {
	Pin  int
	Pull Pull
}

// CounterSpec describes one encoder position source.
// A and B are quadrature pins; Register is used by remote I/O.
type CounterSpec struct {
	A, B     int
	Register uint16
}

// MatrixSpec describes a scanned key matrix.
// Key k sits at row k/len(Columns), column k%len(Columns).
type MatrixSpec struct {
	Rows    []int
	Columns []int
}

// Keys returns the number of keys in the matrix.
func (m MatrixSpec) Keys() int { return len(m.Rows) * len(m.Columns) }

// PollResult is what one poll cycle observed.
type PollResult struct {
	At time.Time

	// Groups whose change flag was raised by this cycle.
	Changed int

	Err error // non-nil means the hardware could not be read
}
