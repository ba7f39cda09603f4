// internal/hw/mcu/provider.go
//go:build tinygo

package mcu

import (
	"errors"
	"machine"

	"github.com/tamzrod/panel-canbridge/internal/input"
	"github.com/tamzrod/panel-canbridge/internal/poller"
)

// Provider is the microcontroller's own GPIO used as poller.Hardware.
// Encoders count on pin-change interrupts; the matrix is scanned on Refresh.
type Provider struct {
	matrix *input.Matrix
}

func NewProvider() *Provider { return &Provider{} }

// ---- poller.Hardware interface ----

func (p *Provider) Line(spec poller.LineSpec) (input.Line, error) {
	return inputPin(spec.Pin, spec.Pull), nil
}

func (p *Provider) Counter(spec poller.CounterSpec) (input.Counter, error) {
	a := inputPin(spec.A, poller.PullUp)
	b := inputPin(spec.B, poller.PullUp)
	q := input.NewQuadrature(a.Get(), b.Get())

	step := func(machine.Pin) { q.Step(a.Get(), b.Get()) }
	for _, pin := range []machine.Pin{a.pin, b.pin} {
		if err := pin.SetInterrupt(machine.PinRising|machine.PinFalling, step); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (p *Provider) Matrix(spec poller.MatrixSpec) ([]input.Line, error) {
	if p.matrix != nil {
		return nil, errors.New("mcu: matrix already configured")
	}
	rows := make([]input.Line, 0, len(spec.Rows))
	for _, n := range spec.Rows {
		rows = append(rows, inputPin(n, poller.PullUp))
	}
	cols := make([]input.Output, 0, len(spec.Columns))
	for _, n := range spec.Columns {
		pin := machine.Pin(n)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		cols = append(cols, output{pin})
	}
	p.matrix = input.NewMatrix(rows, cols)
	return p.matrix.Keys(), nil
}

func (p *Provider) Refresh() error {
	if p.matrix != nil {
		p.matrix.Scan()
	}
	return nil
}

func (p *Provider) Close() error { return nil }

// ---- pins ----

type pinLine struct{ pin machine.Pin }

func (l pinLine) Get() bool { return l.pin.Get() }

type output struct{ pin machine.Pin }

func (o output) Set(v bool) { o.pin.Set(v) }

func inputPin(n int, pull poller.Pull) pinLine {
	var mode machine.PinMode
	switch pull {
	case poller.PullUp:
		mode = machine.PinInputPullup
	case poller.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: mode})
	return pinLine{pin}
}
