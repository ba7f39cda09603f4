// internal/input/hw_test.go
package input

import "testing"

func TestQuadrature_Direction(t *testing.T) {
	q := NewQuadrature(false, false)

	// One full cycle forward.
	for _, s := range [][2]bool{{false, true}, {true, true}, {true, false}, {false, false}} {
		q.Step(s[0], s[1])
	}
	if got := q.Position(); got != 4 {
		t.Fatalf("forward position=%d want 4", got)
	}

	// Half a cycle back.
	for _, s := range [][2]bool{{true, false}, {true, true}} {
		q.Step(s[0], s[1])
	}
	if got := q.Position(); got != 2 {
		t.Fatalf("reverse position=%d want 2", got)
	}
}

func TestQuadrature_IgnoresRepeatsAndGlitches(t *testing.T) {
	q := NewQuadrature(false, false)
	q.Step(false, false)
	q.Step(true, true) // both lines at once: direction unknown
	if got := q.Position(); got != 0 {
		t.Fatalf("position=%d want 0", got)
	}
	q.Step(true, false) // 11 -> 10 is forward from the new state
	if got := q.Position(); got != 1 {
		t.Fatalf("position=%d want 1", got)
	}
}

// fakeGrid wires rows to columns through a set of pressed keys.
type fakeGrid struct {
	rows, cols int
	pressed    map[int]bool
	low        int // column driven low, -1 for none
}

type gridRow struct {
	g *fakeGrid
	r int
}

func (r gridRow) Get() bool {
	if r.g.low < 0 {
		return true
	}
	return !r.g.pressed[r.r*r.g.cols+r.g.low]
}

type gridCol struct {
	g *fakeGrid
	c int
}

func (c gridCol) Set(high bool) {
	if !high {
		c.g.low = c.c
	} else if c.g.low == c.c {
		c.g.low = -1
	}
}

func TestMatrix_KeyNumbering(t *testing.T) {
	g := &fakeGrid{rows: 5, cols: 8, pressed: map[int]bool{0: true, 9: true, 39: true}, low: -1}
	var rows []Line
	var cols []Output
	for r := 0; r < g.rows; r++ {
		rows = append(rows, gridRow{g, r})
	}
	for c := 0; c < g.cols; c++ {
		cols = append(cols, gridCol{g, c})
	}

	m := NewMatrix(rows, cols)
	keys := m.Keys()
	if len(keys) != 40 {
		t.Fatalf("keys=%d want 40", len(keys))
	}

	m.Scan()
	for k, l := range keys {
		if l.Get() != g.pressed[k] {
			t.Fatalf("key %d: got %v want %v", k, l.Get(), g.pressed[k])
		}
	}
	if g.low != -1 {
		t.Fatalf("scan must leave every column high")
	}

	delete(g.pressed, 9)
	m.Scan()
	if keys[9].Get() {
		t.Fatalf("key 9 still down after release")
	}
}
