// internal/writer/writer.go
package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
	"github.com/tamzrod/panel-canbridge/internal/canfix"
	"github.com/tamzrod/panel-canbridge/internal/group"
)

// healthSink is the exact contract the writer uses to report outcomes.
type healthSink interface {
	Success()
	Failure(ctx context.Context, cause error) error
}

type boundGroup struct {
	g    *group.Group
	plan GroupPlan
}

type canWriter struct {
	plan   Plan
	groups []boundGroup
	bus    canbus.Bus
	health healthSink
	log    *slog.Logger
}

// New binds the plan to the live groups by data index.
func New(plan Plan, groups []*group.Group, bus canbus.Bus, health healthSink, log *slog.Logger) (Writer, error) {
	if bus == nil {
		return nil, fmt.Errorf("writer: bus required")
	}
	if log == nil {
		log = slog.Default()
	}

	byIndex := make(map[uint8]GroupPlan, len(plan.Groups))
	for _, gp := range plan.Groups {
		byIndex[gp.Index] = gp
	}

	w := &canWriter{plan: plan, bus: bus, health: health, log: log}
	for _, g := range groups {
		gp, ok := byIndex[g.Index]
		if !ok {
			return nil, fmt.Errorf("writer: no plan for group %q index %d", g.Name, g.Index)
		}
		w.groups = append(w.groups, boundGroup{g: g, plan: gp})
	}
	return w, nil
}

// Write sends every group that changed or whose heartbeat elapsed.
//
// A bus failure is reported to the health sink and the remaining groups
// are still attempted. A frame that cannot be built is a configuration
// error and aborts the tick.
func (w *canWriter) Write(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	for _, b := range w.groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		g := b.g
		if !g.Due(w.plan.Heartbeat) {
			continue
		}

		frame, err := canfix.BuildFrame(w.plan.Addressing, g.Index, b.plan.Codec, canfix.Values{
			Numbers: g.Numbers(),
			Flags:   g.Flags(),
			Fill:    b.plan.Fill,
		})
		if err != nil {
			return res, fmt.Errorf("writer: group %q: %w", g.Name, err)
		}

		res.Attempted++
		if err := w.bus.Send(ctx, frame); err != nil {
			res.Failed++
			g.Failed()
			w.log.Debug("group send failed", "group", g.Name, "index", g.Index, "error", err)
			if w.health != nil {
				if rerr := w.health.Failure(ctx, err); rerr != nil {
					w.log.Debug("bus restart failed", "group", g.Name, "error", rerr)
				}
			}
			continue
		}

		res.Sent++
		g.Sent(now, w.plan.Guard)
		if w.health != nil {
			w.health.Success()
		}
	}

	return res, nil
}
