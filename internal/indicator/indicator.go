// internal/indicator/indicator.go
package indicator

import (
	"fmt"
	"log/slog"

	"github.com/tamzrod/panel-canbridge/internal/status"
)

// Driver is the status light hardware.
type Driver interface {
	SetColor(c status.RGB) error
	SetBrightness(level float64) error
}

// Panel maps bus health onto a Driver.
//
// The color is written only when it changes. Brightness is dropped to zero
// at the start of every tick and restored after a tick that attempted a
// transmit, so activity shows as a blink no longer than one tick.
type Panel struct {
	drv        Driver
	brightness float64

	color  status.RGB
	primed bool
}

// NewPanel returns a panel driving drv at the given brightness (0..1).
func NewPanel(drv Driver, brightness float64) *Panel {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 1 {
		brightness = 1
	}
	return &Panel{drv: drv, brightness: brightness}
}

// Dim turns the light off for the start of a tick.
func (p *Panel) Dim() error {
	return p.drv.SetBrightness(0)
}

// Show updates the color from snap and, if a transmit was attempted this
// tick, turns the light back on.
func (p *Panel) Show(snap status.Snapshot, transmitted bool) error {
	c := status.Encode(snap)
	if !p.primed || c != p.color {
		if err := p.drv.SetColor(c); err != nil {
			return fmt.Errorf("indicator: set color: %w", err)
		}
		p.color = c
		p.primed = true
	}
	if transmitted {
		if err := p.drv.SetBrightness(p.brightness); err != nil {
			return fmt.Errorf("indicator: set brightness: %w", err)
		}
	}
	return nil
}

// ---- drivers ----

// LogDriver reports indicator changes through a logger. Brightness changes
// are logged at Debug since they happen every tick.
type LogDriver struct {
	Log *slog.Logger
}

func (d LogDriver) SetColor(c status.RGB) error {
	d.Log.Info("indicator color", "r", c.R, "g", c.G, "b", c.B)
	return nil
}

func (d LogDriver) SetBrightness(level float64) error {
	d.Log.Debug("indicator brightness", "level", level)
	return nil
}

// None discards indicator output.
type None struct{}

func (None) SetColor(status.RGB) error   { return nil }
func (None) SetBrightness(float64) error { return nil }

// New returns the named driver ("log" or "none").
func New(name string, log *slog.Logger) (Driver, error) {
	switch name {
	case "", "log":
		if log == nil {
			log = slog.Default()
		}
		return LogDriver{Log: log}, nil
	case "none":
		return None{}, nil
	default:
		return nil, fmt.Errorf("indicator: unknown driver %q", name)
	}
}
