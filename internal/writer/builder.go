// internal/writer/builder.go
package writer

import (
	"fmt"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
	"github.com/tamzrod/panel-canbridge/internal/canfix"
	cfg "github.com/tamzrod/panel-canbridge/internal/config"
)

// BuildPlan converts a validated, normalized config into a Writer Plan.
// Every group is checked against its type here so that no frame can fail
// to encode at run time.
func BuildPlan(c *cfg.Config) (Plan, error) {
	mode := canfix.Broadcast
	if c.Bridge.NodeSpecific {
		mode = canfix.NodeSpecific
	}
	a := canfix.Addressing{
		Mode:   mode,
		NodeID: uint8(c.Bridge.NodeID),
		DataID: uint16(c.Bridge.DataID),
	}
	if err := a.Validate(); err != nil {
		return Plan{}, fmt.Errorf("writer: %w", err)
	}

	plan := Plan{
		Addressing: a,
		Heartbeat:  c.Bridge.HeartbeatTicks,
		Guard:      time.Duration(c.Bridge.OneShotGuardMs) * time.Millisecond,
	}

	for _, g := range c.Groups {
		codec, err := canfix.NewCodec(g.Type, g.Multiplier)
		if err != nil {
			return Plan{}, fmt.Errorf("writer: group %q: %w", g.Name, err)
		}

		if n := canfix.HeaderLen + codec.Type.Size(); n > canbus.MaxLen {
			return Plan{}, fmt.Errorf("writer: group %q: %w: %s needs %d", g.Name, canfix.ErrPayloadOverflow, codec.Type, n)
		}
		if n, slots := len(g.Encoders), codec.Type.NumericSlots(); n > slots {
			return Plan{}, fmt.Errorf("writer: group %q: %d encoders but %s carries %d numbers", g.Name, n, codec.Type, slots)
		}
		buttons := len(g.Buttons)
		if g.Keys != nil {
			buttons += g.Keys.Count
		}
		if bits := codec.Type.FlagBits(); buttons > bits {
			return Plan{}, fmt.Errorf("writer: group %q: %d buttons but %s carries %d flags", g.Name, buttons, codec.Type, bits)
		}

		fill := g.Keys == nil
		if g.Fill != nil {
			fill = *g.Fill
		}

		plan.Groups = append(plan.Groups, GroupPlan{
			Name:  g.Name,
			Index: uint8(g.Index),
			Codec: codec,
			Fill:  fill,
		})
	}

	return plan, nil
}
