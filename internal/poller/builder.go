// internal/poller/builder.go
package poller

import (
	"fmt"
	"slices"
	"time"

	cfg "github.com/tamzrod/panel-canbridge/internal/config"
	"github.com/tamzrod/panel-canbridge/internal/group"
	"github.com/tamzrod/panel-canbridge/internal/input"
)

// Build constructs a Poller from a validated, normalized config.
// Hardware acquisition happens here so that a missing pin fails at startup.
func Build(c *cfg.Config, hw Hardware, now time.Time) (*Poller, error) {
	p := &Poller{hw: hw}

	var keys []input.Line
	matrix := func() ([]input.Line, error) {
		if keys != nil {
			return keys, nil
		}
		if c.Matrix == nil {
			return nil, fmt.Errorf("poller: matrix keys used but no matrix configured")
		}
		lines, err := hw.Matrix(MatrixSpec{Rows: c.Matrix.Rows, Columns: c.Matrix.Columns})
		if err != nil {
			return nil, fmt.Errorf("poller: matrix: %w", err)
		}
		keys = lines
		return keys, nil
	}

	for _, gc := range c.Groups {
		g := &group.Group{Name: gc.Name, Index: uint8(gc.Index)}

		for i, ec := range gc.Encoders {
			counter, err := hw.Counter(CounterSpec{A: ec.A, B: ec.B, Register: ec.Register})
			if err != nil {
				return nil, fmt.Errorf("poller: group %q encoder %d: %w", gc.Name, i, err)
			}
			ch := &group.EncoderChannel{Name: nameOr(ec.Name, "enc", i)}
			g.Encoders = append(g.Encoders, ch)
			p.encoders = append(p.encoders, boundEncoder{
				counter: counter,
				divisor: ec.Divisor,
				ch:      ch,
				g:       g,
			})
		}

		for i, bc := range gc.Buttons {
			var (
				line      input.Line
				activeLow bool
			)
			if bc.Key != nil {
				lines, err := matrix()
				if err != nil {
					return nil, err
				}
				line = lines[*bc.Key]
			} else {
				pull, err := ParsePull(bc.Pull)
				if err != nil {
					return nil, err
				}
				line, err = hw.Line(LineSpec{Pin: *bc.Pin, Pull: pull})
				if err != nil {
					return nil, fmt.Errorf("poller: group %q button %d: %w", gc.Name, i, err)
				}
				activeLow = bc.Invert != nil && *bc.Invert
			}
			p.bindButton(g, nameOr(bc.Name, "btn", i), bc.OneShot, line, bc.DebounceMs, activeLow)
		}

		if gc.Keys != nil {
			lines, err := matrix()
			if err != nil {
				return nil, err
			}
			for k := gc.Keys.First; k < gc.Keys.First+gc.Keys.Count; k++ {
				oneShot := !slices.Contains(gc.Repeating, k)
				p.bindButton(g, fmt.Sprintf("key%d", k), oneShot, lines[k], c.Matrix.DebounceMs, false)
			}
		}

		if len(g.Buttons) > group.FlagsPerGroup {
			return nil, fmt.Errorf("poller: group %q has %d buttons, max %d", gc.Name, len(g.Buttons), group.FlagsPerGroup)
		}

		p.groups = append(p.groups, g)
	}

	// Seed the debouncers and encoder baselines from a real sample so the
	// levels and counts present at startup do not show up as input.
	if err := hw.Refresh(); err != nil {
		return nil, fmt.Errorf("poller: initial sample: %w", err)
	}
	for i := range p.buttons {
		b := &p.buttons[i]
		b.src = input.NewButton(b.line, b.interval, b.activeLow, now)
	}
	for i := range p.encoders {
		e := &p.encoders[i]
		e.src = input.NewEncoderSource(e.counter, e.divisor)
	}

	return p, nil
}

func (p *Poller) bindButton(g *group.Group, name string, oneShot bool, line input.Line, debounceMs int, activeLow bool) {
	ch := &group.ButtonChannel{Name: name, OneShot: oneShot}
	g.Buttons = append(g.Buttons, ch)
	p.buttons = append(p.buttons, boundButton{
		line:      line,
		interval:  time.Duration(debounceMs) * time.Millisecond,
		activeLow: activeLow,
		ch:        ch,
		g:         g,
	})
}

func nameOr(name, prefix string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s%d", prefix, i)
}
