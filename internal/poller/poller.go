// internal/poller/poller.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/group"
	"github.com/tamzrod/panel-canbridge/internal/input"
)

// Hardware abstracts the input hardware the poller reads.
// Lines and counters report what the last Refresh captured.
type Hardware interface {
	Line(spec LineSpec) (input.Line, error)
	Counter(spec CounterSpec) (input.Counter, error)
	// Matrix returns one line per key, true while the key is down.
	Matrix(spec MatrixSpec) ([]input.Line, error)

	// Refresh samples all inputs. It is called once per tick.
	Refresh() error
	Close() error
}

type boundButton struct {
	line      input.Line
	interval  time.Duration
	activeLow bool

	src *input.Button
	ch  *group.ButtonChannel
	g   *group.Group
}

type boundEncoder struct {
	counter input.Counter
	divisor int

	src *input.EncoderSource
	ch  *group.EncoderChannel
	g   *group.Group
}

// Poller turns raw input into group state, once per tick.
// It owns the groups; the writer only reads them and records sends.
type Poller struct {
	hw       Hardware
	groups   []*group.Group
	buttons  []boundButton
	encoders []boundEncoder
}

// Groups returns the groups in transmit order.
func (p *Poller) Groups() []*group.Group { return p.groups }

// Close releases the hardware.
func (p *Poller) Close() error { return p.hw.Close() }

// PollOnce performs exactly one poll cycle:
// deferred one-shot clears, one hardware sample, then every button and
// encoder. A hardware failure skips the sample; the clears still run so
// pending one-shots are not held past their guard.
func (p *Poller) PollOnce(now time.Time) PollResult {
	res := PollResult{At: now}

	before := p.changedCount()

	for _, g := range p.groups {
		g.Expire(now)
	}

	if err := p.hw.Refresh(); err != nil {
		res.Err = fmt.Errorf("poller: refresh: %w", err)
		res.Changed = p.changedCount() - before
		return res
	}

	for _, b := range p.buttons {
		b.src.Update(now)
		switch {
		case b.src.Pressed():
			if b.ch.Press() {
				b.g.Changed = true
			}
		case b.src.Released():
			if b.ch.Release() {
				b.g.Changed = true
			}
		}
	}

	for _, e := range p.encoders {
		if e.ch.Observe(e.src.ReadAndReset()) {
			e.g.Changed = true
		}
	}

	res.Changed = p.changedCount() - before
	return res
}

func (p *Poller) changedCount() int {
	n := 0
	for _, g := range p.groups {
		if g.Changed {
			n++
		}
	}
	return n
}
