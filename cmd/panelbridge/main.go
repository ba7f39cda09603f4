// cmd/panelbridge/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/bridge"
	"github.com/tamzrod/panel-canbridge/internal/canbus"
	"github.com/tamzrod/panel-canbridge/internal/config"
	"github.com/tamzrod/panel-canbridge/internal/hw/rpio"
	"github.com/tamzrod/panel-canbridge/internal/indicator"
	"github.com/tamzrod/panel-canbridge/internal/poller"
	pmodbus "github.com/tamzrod/panel-canbridge/internal/poller/modbus"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: panelbridge <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	level := slog.LevelInfo
	if cfg.Bus.Log {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// --------------------
	// Hardware, bus, indicator
	// --------------------

	hw, err := openHardware(cfg)
	if err != nil {
		log.Fatalf("hardware open failed (driver=%s): %v", cfg.Hardware.Driver, err)
	}

	bus, err := openBus(cfg)
	if err != nil {
		log.Fatalf("bus open failed (driver=%s): %v", cfg.Bus.Driver, err)
	}

	drv, err := indicator.New(cfg.Indicator.Driver, logger)
	if err != nil {
		log.Fatalf("indicator failed: %v", err)
	}

	b, err := bridge.Build(cfg, hw, bus, drv, logger)
	if err != nil {
		log.Fatalf("bridge build failed: %v", err)
	}
	defer b.Close()

	// --------------------
	// Run until signalled
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		log.Printf("bridge stopped: %v", err)
		return
	}
	log.Printf("bridge stopped")
}

func openHardware(cfg *config.Config) (poller.Hardware, error) {
	switch cfg.Hardware.Driver {
	case "rpio":
		return rpio.Open(rpio.DefaultSample)
	case "modbus":
		m := cfg.Hardware.Modbus
		return pmodbus.New(pmodbus.Config{
			Endpoint: m.Endpoint,
			UnitID:   m.UnitID,
			Baud:     m.Baud,
			Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
		})
	default:
		return nil, fmt.Errorf("driver not available in this build")
	}
}

func openBus(cfg *config.Config) (canbus.Bus, error) {
	switch cfg.Bus.Driver {
	case "socketcan":
		return canbus.DialSocketCAN(cfg.Bus.Interface)
	case "slcan":
		return canbus.DialSLCAN(canbus.SLCANConfig{
			Port:    cfg.Bus.Port,
			Baud:    cfg.Bus.Baud,
			Bitrate: cfg.Bus.Bitrate,
		})
	case "loopback":
		// Dry run: frames are only visible through bus logging.
		return canbus.NewLoopbackBus().Open(), nil
	default:
		return nil, fmt.Errorf("driver not available in this build")
	}
}
