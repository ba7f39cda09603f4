// internal/hw/rpio/provider.go
//go:build linux && !tinygo

package rpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/tamzrod/panel-canbridge/internal/input"
	"github.com/tamzrod/panel-canbridge/internal/poller"
)

// DefaultSample is the encoder sampling period. Hand-turned knobs stay
// well below one edge per millisecond.
const DefaultSample = time.Millisecond

// Provider is Raspberry Pi GPIO used as poller.Hardware.
// Direct lines are read live, encoders are sampled by one background
// goroutine, and the key matrix is scanned on Refresh.
type Provider struct {
	sample time.Duration

	mu       sync.Mutex
	encoders []*encoder
	matrix   *input.Matrix
	started  bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Open maps the GPIO registers.
func Open(sample time.Duration) (*Provider, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio: open: %w", err)
	}
	if sample <= 0 {
		sample = DefaultSample
	}
	return &Provider{sample: sample, stop: make(chan struct{})}, nil
}

// ---- poller.Hardware interface ----

func (p *Provider) Line(spec poller.LineSpec) (input.Line, error) {
	pin, err := inputPin(spec.Pin, spec.Pull)
	if err != nil {
		return nil, err
	}
	return line{pin}, nil
}

func (p *Provider) Counter(spec poller.CounterSpec) (input.Counter, error) {
	a, err := inputPin(spec.A, poller.PullUp)
	if err != nil {
		return nil, err
	}
	b, err := inputPin(spec.B, poller.PullUp)
	if err != nil {
		return nil, err
	}
	e := &encoder{a: a, b: b, q: input.NewQuadrature(high(a), high(b))}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil, errors.New("rpio: encoders must be registered before the first refresh")
	}
	p.encoders = append(p.encoders, e)
	return e.q, nil
}

func (p *Provider) Matrix(spec poller.MatrixSpec) ([]input.Line, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.matrix != nil {
		return nil, errors.New("rpio: matrix already configured")
	}

	rows := make([]input.Line, 0, len(spec.Rows))
	for _, n := range spec.Rows {
		pin, err := inputPin(n, poller.PullUp)
		if err != nil {
			return nil, err
		}
		rows = append(rows, line{pin})
	}
	cols := make([]input.Output, 0, len(spec.Columns))
	for _, n := range spec.Columns {
		if n < 0 || n > 53 {
			return nil, fmt.Errorf("rpio: pin %d out of range", n)
		}
		pin := rpio.Pin(n)
		pin.Output()
		cols = append(cols, output{pin})
	}

	p.matrix = input.NewMatrix(rows, cols)
	return p.matrix.Keys(), nil
}

// Refresh scans the matrix. The first call also starts the encoder sampler.
func (p *Provider) Refresh() error {
	p.mu.Lock()
	if !p.started {
		p.started = true
		if len(p.encoders) > 0 {
			p.wg.Add(1)
			go p.sampleEncoders(p.encoders)
		}
	}
	m := p.matrix
	p.mu.Unlock()

	if m != nil {
		m.Scan()
	}
	return nil
}

// Close stops the sampler and unmaps the GPIO registers.
func (p *Provider) Close() error {
	close(p.stop)
	p.wg.Wait()
	return rpio.Close()
}

func (p *Provider) sampleEncoders(encs []*encoder) {
	defer p.wg.Done()
	t := time.NewTicker(p.sample)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			for _, e := range encs {
				e.q.Step(high(e.a), high(e.b))
			}
		}
	}
}

// ---- pins ----

type encoder struct {
	a, b rpio.Pin
	q    *input.Quadrature
}

type line struct{ pin rpio.Pin }

func (l line) Get() bool { return high(l.pin) }

type output struct{ pin rpio.Pin }

func (o output) Set(v bool) {
	if v {
		o.pin.High()
	} else {
		o.pin.Low()
	}
}

func high(p rpio.Pin) bool { return p.Read() == rpio.High }

func inputPin(n int, pull poller.Pull) (rpio.Pin, error) {
	if n < 0 || n > 53 {
		return 0, fmt.Errorf("rpio: pin %d out of range", n)
	}
	pin := rpio.Pin(n)
	pin.Input()
	switch pull {
	case poller.PullUp:
		pin.PullUp()
	case poller.PullDown:
		pin.PullDown()
	default:
		pin.PullOff()
	}
	return pin, nil
}
