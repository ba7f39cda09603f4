// cmd/panelfw/main.go
//go:build tinygo

// Firmware for an Adafruit Feather RP2040 CAN driving a 6x2 key matrix.
// Build with: tinygo flash -target=feather-rp2040 ./cmd/panelfw
package main

import (
	"context"
	"log"
	"log/slog"
	"machine"
	"os"

	"github.com/tamzrod/panel-canbridge/internal/bridge"
	"github.com/tamzrod/panel-canbridge/internal/config"
	"github.com/tamzrod/panel-canbridge/internal/hw/mcu"
)

// Board wiring.
const (
	canCS    = machine.GPIO19
	canSCK   = machine.GPIO14
	canSDO   = machine.GPIO15
	canSDI   = machine.GPIO8
	neopixel = machine.GPIO21
)

func panelConfig() *config.Config {
	return &config.Config{
		Bridge: config.BridgeConfig{
			NodeID: 0x91,
			DataID: 0x308,
		},
		Bus:       config.BusConfig{Driver: "mcp2515", Bitrate: 250000},
		Indicator: config.IndicatorConfig{Driver: "ws2812"},
		Hardware:  config.HardwareConfig{Driver: "mcu"},
		Matrix: &config.MatrixConfig{
			// A2, A3, D24, D25, RX, TX
			Rows: []int{28, 29, 24, 25, 1, 0},
			// A0, A1
			Columns: []int{26, 27},
		},
		Groups: []config.GroupConfig{
			{Name: "switches", Index: 0, Keys: &config.KeyRange{First: 0, Count: 12}},
		},
	}
}

func main() {
	cfg := panelConfig()
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	spi := machine.SPI1
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 8 * machine.MHz,
		SCK:       canSCK,
		SDO:       canSDO,
		SDI:       canSDI,
	}); err != nil {
		log.Fatalf("spi configure failed: %v", err)
	}
	canCS.Configure(machine.PinConfig{Mode: machine.PinOutput})

	bus, err := mcu.DialMCP2515(mcu.MCP2515Config{SPI: spi, CS: canCS, Bitrate: cfg.Bus.Bitrate})
	if err != nil {
		log.Fatalf("bus open failed: %v", err)
	}

	b, err := bridge.Build(cfg, mcu.NewProvider(), bus, mcu.NewPixel(neopixel), logger)
	if err != nil {
		log.Fatalf("bridge build failed: %v", err)
	}

	if err := b.Run(context.Background()); err != nil {
		log.Fatalf("bridge stopped: %v", err)
	}
}
