// internal/input/quadrature.go
package input

import "sync/atomic"

// quadTable maps (previous<<2 | current) A/B states to a count change.
// 00 -> 01 -> 11 -> 10 -> 00 counts up; invalid double transitions count 0.
var quadTable = [16]int8{0, 1, -1, 0, -1, 0, 0, 1, 1, 0, 0, -1, 0, -1, 1, 0}

// Quadrature decodes A/B samples into a position. Step has a single caller
// (an interrupt handler or a sampler goroutine); Position may be read
// concurrently from the tick.
type Quadrature struct {
	prev uint8
	pos  atomic.Int64
}

// NewQuadrature seeds the decoder with the current A/B levels.
func NewQuadrature(a, b bool) *Quadrature {
	return &Quadrature{prev: quadState(a, b)}
}

// Step feeds one A/B sample.
func (q *Quadrature) Step(a, b bool) {
	cur := quadState(a, b)
	if cur == q.prev {
		return
	}
	if d := quadTable[q.prev<<2|cur]; d != 0 {
		q.pos.Add(int64(d))
	}
	q.prev = cur
}

// Position implements Counter.
func (q *Quadrature) Position() int { return int(q.pos.Load()) }

func quadState(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}
