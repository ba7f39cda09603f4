// internal/config/validate.go
package config

import (
	"fmt"
)

// Protocol limits checked at startup.
const (
	maxNodeID        = 0xFF
	maxStdID         = 0x7FF
	nodeSpecificBase = 0x6E0
	maxGroupIndex    = 0xFF
	indexStride      = 32
	maxControlIndex  = 7
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: missing configuration")
	}

	// ------------------------------------------------------------
	// ADDRESSING
	// ------------------------------------------------------------

	b := cfg.Bridge
	if b.NodeID < 0 || b.NodeID > maxNodeID {
		return fmt.Errorf("bridge: node_id %d out of range 0..%d", b.NodeID, maxNodeID)
	}
	if b.DataID < 0 || b.DataID > maxStdID {
		return fmt.Errorf("bridge: data_id 0x%X exceeds 11-bit identifier", b.DataID)
	}
	if b.NodeSpecific && b.NodeID+nodeSpecificBase > maxStdID {
		return fmt.Errorf("bridge: node-specific identifier 0x%X exceeds 11 bits", b.NodeID+nodeSpecificBase)
	}

	// ------------------------------------------------------------
	// TIMING (zero means default)
	// ------------------------------------------------------------

	timing := []struct {
		name string
		v    int
	}{
		{"tick_ms", b.TickMs},
		{"heartbeat_ticks", b.HeartbeatTicks},
		{"one_shot_guard_ms", b.OneShotGuardMs},
		{"healthy_streak", b.HealthyStreak},
		{"send_timeout_ms", b.SendTimeoutMs},
	}
	for _, t := range timing {
		if t.v < 0 {
			return fmt.Errorf("bridge: %s must not be negative", t.name)
		}
	}

	// ------------------------------------------------------------
	// DRIVERS
	// ------------------------------------------------------------

	switch cfg.Bus.Driver {
	case "socketcan":
		if cfg.Bus.Interface == "" {
			return fmt.Errorf("bus: socketcan requires interface")
		}
	case "slcan":
		if cfg.Bus.Port == "" {
			return fmt.Errorf("bus: slcan requires port")
		}
	case "loopback", "mcp2515":
	default:
		return fmt.Errorf("bus: unknown driver %q", cfg.Bus.Driver)
	}

	switch cfg.Indicator.Driver {
	case "", "log", "none", "ws2812":
	default:
		return fmt.Errorf("indicator: unknown driver %q", cfg.Indicator.Driver)
	}
	if p := cfg.Indicator.Brightness; p != nil && (*p < 0 || *p > 1) {
		return fmt.Errorf("indicator: brightness %v out of range 0..1", *p)
	}

	switch cfg.Hardware.Driver {
	case "rpio", "mcu":
	case "modbus":
		if cfg.Hardware.Modbus == nil || cfg.Hardware.Modbus.Endpoint == "" {
			return fmt.Errorf("hardware: modbus requires an endpoint")
		}
	default:
		return fmt.Errorf("hardware: unknown driver %q", cfg.Hardware.Driver)
	}

	if m := cfg.Matrix; m != nil {
		if len(m.Rows) == 0 || len(m.Columns) == 0 {
			return fmt.Errorf("matrix: rows and columns are required")
		}
		if m.DebounceMs < 0 {
			return fmt.Errorf("matrix: debounce_ms must not be negative")
		}
	}

	// ------------------------------------------------------------
	// GROUPS
	// ------------------------------------------------------------

	if len(cfg.Groups) == 0 {
		return fmt.Errorf("config: at least one group is required")
	}

	// key = group index
	indexOwner := make(map[int]string)
	// key = matrix key
	keyOwner := make(map[int]string)

	for _, g := range cfg.Groups {
		if g.Name == "" {
			return fmt.Errorf("group at index %d: name is required", g.Index)
		}
		if g.Index < 0 || g.Index > maxGroupIndex || g.Index/indexStride > maxControlIndex {
			return fmt.Errorf("group %q: index %d out of range 0..%d", g.Name, g.Index, maxGroupIndex)
		}
		if prev, exists := indexOwner[g.Index]; exists {
			return fmt.Errorf("group %q: index %d already used by group %q", g.Name, g.Index, prev)
		}
		indexOwner[g.Index] = g.Name

		if g.Multiplier < 0 {
			return fmt.Errorf("group %q: multiplier must not be negative", g.Name)
		}

		for i, e := range g.Encoders {
			if e.Divisor < 0 {
				return fmt.Errorf("group %q: encoder %d: divisor must not be negative", g.Name, i)
			}
		}

		for i, btn := range g.Buttons {
			if (btn.Pin == nil) == (btn.Key == nil) {
				return fmt.Errorf("group %q: button %d: exactly one of pin or key must be set", g.Name, i)
			}
			switch btn.Pull {
			case "", "up", "down", "none":
			default:
				return fmt.Errorf("group %q: button %d: unknown pull %q", g.Name, i, btn.Pull)
			}
			if btn.DebounceMs < 0 {
				return fmt.Errorf("group %q: button %d: debounce_ms must not be negative", g.Name, i)
			}
			if btn.Key != nil {
				if err := claimKey(cfg.Matrix, keyOwner, *btn.Key, g.Name); err != nil {
					return err
				}
			}
		}

		if g.Keys == nil {
			if len(g.Repeating) > 0 {
				return fmt.Errorf("group %q: repeating requires keys", g.Name)
			}
			continue
		}

		if g.Keys.Count <= 0 {
			return fmt.Errorf("group %q: keys.count must be positive", g.Name)
		}
		for k := g.Keys.First; k < g.Keys.First+g.Keys.Count; k++ {
			if err := claimKey(cfg.Matrix, keyOwner, k, g.Name); err != nil {
				return err
			}
		}
		for _, k := range g.Repeating {
			if !g.Keys.Contains(k) {
				return fmt.Errorf(
					"group %q: repeating key %d outside keys %d..%d",
					g.Name,
					k,
					g.Keys.First,
					g.Keys.First+g.Keys.Count-1,
				)
			}
		}
	}

	return nil
}

func claimKey(m *MatrixConfig, owner map[int]string, k int, group string) error {
	if m == nil {
		return fmt.Errorf("group %q: key %d requires a matrix", group, k)
	}
	if k < 0 || k >= m.Keys() {
		return fmt.Errorf("group %q: key %d outside matrix 0..%d", group, k, m.Keys()-1)
	}
	if prev, exists := owner[k]; exists {
		return fmt.Errorf("group %q: key %d already used by group %q", group, k, prev)
	}
	owner[k] = group
	return nil
}
