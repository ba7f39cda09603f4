// internal/hw/mcu/bus.go
//go:build tinygo

package mcu

import (
	"context"
	"fmt"
	"machine"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp2515"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
)

// MCP2515Config selects the controller wiring and bus speed.
type MCP2515Config struct {
	SPI     drivers.SPI
	CS      machine.Pin
	Bitrate int  // bits per second
	Clock8  bool // 8 MHz crystal instead of 16 MHz
}

var mcpSpeeds = map[int]byte{
	125000:  mcp2515.CAN125kBps,
	250000:  mcp2515.CAN250kBps,
	500000:  mcp2515.CAN500kBps,
	1000000: mcp2515.CAN1000kBps,
}

// MCP2515 is an SPI CAN controller used as canbus.Bus.
type MCP2515 struct {
	mu    sync.Mutex
	dev   *mcp2515.Device
	speed byte
	clock byte
}

// DialMCP2515 resets the controller and joins the bus.
func DialMCP2515(cfg MCP2515Config) (*MCP2515, error) {
	speed, ok := mcpSpeeds[cfg.Bitrate]
	if !ok {
		return nil, fmt.Errorf("mcp2515: unsupported bitrate %d", cfg.Bitrate)
	}
	clock := byte(mcp2515.Clock16MHz)
	if cfg.Clock8 {
		clock = mcp2515.Clock8MHz
	}

	m := &MCP2515{dev: mcp2515.New(cfg.SPI, cfg.CS), speed: speed, clock: clock}
	m.dev.Configure()
	if err := m.dev.Begin(m.speed, m.clock); err != nil {
		return nil, fmt.Errorf("mcp2515: begin: %w", err)
	}
	return m, nil
}

func (m *MCP2515) Send(ctx context.Context, f canbus.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return canbus.Transport("send", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.dev.Tx(f.ID, f.Len, f.Payload()); err != nil {
		return canbus.Transport("send", err)
	}
	return nil
}

// Restart resets the controller and rejoins the bus, clearing bus-off
// and error-passive states.
func (m *MCP2515) Restart(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dev.Configure()
	if err := m.dev.Begin(m.speed, m.clock); err != nil {
		return canbus.Transport("restart", err)
	}
	return nil
}

func (m *MCP2515) Close() error { return nil }
