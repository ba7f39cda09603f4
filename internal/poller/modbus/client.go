// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/panel-canbridge/internal/input"
	"github.com/tamzrod/panel-canbridge/internal/poller"
)

// reader is the part of modbus.Client the provider uses.
type reader interface {
	ReadDiscreteInputs(address, quantity uint16) ([]byte, error) // FC 2
	ReadInputRegisters(address, quantity uint16) ([]byte, error) // FC 4
}

type handler interface {
	Connect() error
	Close() error
}

// Config is minimal transport config.
type Config struct {
	// Endpoint is "tcp://host:port" or a serial device for RTU.
	Endpoint string
	UnitID   uint8
	Baud     int
	Timeout  time.Duration
}

// Provider is a remote I/O module used as poller.Hardware.
// Buttons are discrete inputs (FC 2), encoder counters are input
// registers (FC 4). Refresh issues one read per function code covering
// every registered address.
type Provider struct {
	mu      sync.Mutex
	handler handler
	client  reader

	inputs    []uint16 // registered discrete input addresses
	registers []uint16 // registered input register addresses

	bits    map[uint16]bool
	regs    map[uint16]uint16
	sampled bool
}

// New creates a connected provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus provider: endpoint required")
	}

	var h interface {
		handler
		modbus.ClientHandler
	}
	if addr, ok := strings.CutPrefix(cfg.Endpoint, "tcp://"); ok {
		th := modbus.NewTCPClientHandler(addr)
		th.Timeout = cfg.Timeout
		th.SlaveId = cfg.UnitID
		h = th
	} else {
		rh := modbus.NewRTUClientHandler(cfg.Endpoint)
		rh.BaudRate = cfg.Baud
		rh.DataBits = 8
		rh.Parity = "N"
		rh.StopBits = 1
		rh.Timeout = cfg.Timeout
		rh.SlaveId = cfg.UnitID
		h = rh
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus provider: connect %s: %w", cfg.Endpoint, err)
	}

	return newProvider(h, modbus.NewClient(h)), nil
}

func newProvider(h handler, c reader) *Provider {
	return &Provider{
		handler: h,
		client:  c,
		bits:    make(map[uint16]bool),
		regs:    make(map[uint16]uint16),
	}
}

// Close closes the transport.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handler == nil {
		return nil
	}
	return p.handler.Close()
}

// ---- poller.Hardware interface ----

// Line registers a discrete input. Pull is a property of the remote module
// and is ignored.
func (p *Provider) Line(spec poller.LineSpec) (input.Line, error) {
	if spec.Pin < 0 || spec.Pin > 0xFFFF {
		return nil, fmt.Errorf("modbus provider: discrete input %d out of range", spec.Pin)
	}
	addr := uint16(spec.Pin)
	p.mu.Lock()
	p.inputs = append(p.inputs, addr)
	p.mu.Unlock()
	return &line{p: p, addr: addr}, nil
}

// Counter registers an input register holding a 16-bit wrapping count.
func (p *Provider) Counter(spec poller.CounterSpec) (input.Counter, error) {
	p.mu.Lock()
	p.registers = append(p.registers, spec.Register)
	p.mu.Unlock()
	return &counter{p: p, addr: spec.Register}, nil
}

// Matrix is not available on remote I/O; wire matrix keys as discrete
// inputs instead.
func (p *Provider) Matrix(poller.MatrixSpec) ([]input.Line, error) {
	return nil, errors.New("modbus provider: key matrix not supported")
}

// Refresh reads every registered input. All-or-nothing: any failure keeps
// the previous sample.
func (p *Provider) Refresh() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	bits := make(map[uint16]bool, len(p.inputs))
	if lo, qty, ok := span(p.inputs); ok {
		data, err := p.client.ReadDiscreteInputs(lo, qty)
		if err != nil {
			return fmt.Errorf("modbus provider: read discrete inputs %d+%d: %w", lo, qty, err)
		}
		for i, v := range unpackBits(data, int(qty)) {
			bits[lo+uint16(i)] = v
		}
	}

	regs := make(map[uint16]uint16, len(p.registers))
	if lo, qty, ok := span(p.registers); ok {
		data, err := p.client.ReadInputRegisters(lo, qty)
		if err != nil {
			return fmt.Errorf("modbus provider: read input registers %d+%d: %w", lo, qty, err)
		}
		vals := unpackRegisters(data)
		if len(vals) < int(qty) {
			return fmt.Errorf("modbus provider: short register read: got=%d want=%d", len(vals), qty)
		}
		for i, v := range vals {
			regs[lo+uint16(i)] = v
		}
	}

	p.bits = bits
	p.regs = regs
	p.sampled = true
	return nil
}

// ---- inputs ----

type line struct {
	p    *Provider
	addr uint16
}

func (l *line) Get() bool {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	return l.p.bits[l.addr]
}

// counter extends the module's 16-bit count into a position that never
// wraps, assuming fewer than 32768 counts between two refreshes. The
// position starts at zero against the first successful sample.
type counter struct {
	p    *Provider
	addr uint16

	primed bool
	last   uint16
	pos    int
}

func (c *counter) Position() int {
	c.p.mu.Lock()
	raw, sampled := c.p.regs[c.addr], c.p.sampled
	c.p.mu.Unlock()

	if !sampled {
		return c.pos
	}
	if !c.primed {
		c.primed = true
		c.last = raw
		return c.pos
	}
	c.pos += int(int16(raw - c.last))
	c.last = raw
	return c.pos
}

// ---- helpers (pure geometry) ----

// span returns the smallest read covering all addresses.
func span(addrs []uint16) (lo, qty uint16, ok bool) {
	if len(addrs) == 0 {
		return 0, 0, false
	}
	lo, hi := addrs[0], addrs[0]
	for _, a := range addrs[1:] {
		lo = min(lo, a)
		hi = max(hi, a)
	}
	return lo, hi - lo + 1, true
}

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		if byteIdx >= len(data) {
			out[i] = false
			continue
		}
		out[i] = (data[byteIdx]&(1<<bitIdx) != 0)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
