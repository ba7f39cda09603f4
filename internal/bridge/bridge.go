// internal/bridge/bridge.go
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
	cfg "github.com/tamzrod/panel-canbridge/internal/config"
	"github.com/tamzrod/panel-canbridge/internal/indicator"
	"github.com/tamzrod/panel-canbridge/internal/poller"
	"github.com/tamzrod/panel-canbridge/internal/status"
	"github.com/tamzrod/panel-canbridge/internal/writer"
)

// Bridge owns one panel: its inputs, its bus and its indicator.
// All state is touched from the tick only.
type Bridge struct {
	poller  *poller.Poller
	writer  writer.Writer
	tracker *status.Tracker
	panel   *indicator.Panel
	bus     canbus.Bus

	tick time.Duration
	log  *slog.Logger
	now  func() time.Time
}

// TickResult is what one tick did.
type TickResult struct {
	Poll  poller.PollResult
	Write writer.Result
}

// Build wires a Bridge from a validated, normalized config.
// The bus is wrapped with the send timeout and, if enabled, logging.
func Build(c *cfg.Config, hw poller.Hardware, bus canbus.Bus, drv indicator.Driver, log *slog.Logger) (*Bridge, error) {
	if log == nil {
		log = slog.Default()
	}

	if c.Bus.Log {
		bus = canbus.NewLoggedBus(bus, log, slog.LevelDebug)
	}
	bus = canbus.WithTimeout(bus, time.Duration(c.Bridge.SendTimeoutMs)*time.Millisecond)

	plan, err := writer.BuildPlan(c)
	if err != nil {
		return nil, err
	}

	now := time.Now
	p, err := poller.Build(c, hw, now())
	if err != nil {
		return nil, err
	}

	tracker := status.NewTracker(c.Bridge.HealthyStreak, bus, log)

	w, err := writer.New(plan, p.Groups(), bus, tracker, log)
	if err != nil {
		return nil, err
	}

	brightness := cfg.DefaultBrightness
	if c.Indicator.Brightness != nil {
		brightness = *c.Indicator.Brightness
	}

	b := &Bridge{
		poller:  p,
		writer:  w,
		tracker: tracker,
		panel:   indicator.NewPanel(drv, brightness),
		bus:     bus,
		tick:    time.Duration(c.Bridge.TickMs) * time.Millisecond,
		log:     log,
		now:     now,
	}

	// Red until the first frames go out.
	if err := b.panel.Show(tracker.Snapshot(), true); err != nil {
		log.Warn("indicator update failed", "error", err)
	}

	return b, nil
}

// Health returns the current bus health.
func (b *Bridge) Health() status.Snapshot { return b.tracker.Snapshot() }

// Tick runs one cycle: dim the indicator, poll the inputs, transmit due
// groups, show health. Only configuration errors are returned; bus and
// hardware failures are logged and recovered from on later ticks.
func (b *Bridge) Tick(ctx context.Context, now time.Time) (TickResult, error) {
	var res TickResult

	if err := b.panel.Dim(); err != nil {
		b.log.Warn("indicator update failed", "error", err)
	}

	res.Poll = b.poller.PollOnce(now)
	if res.Poll.Err != nil {
		b.log.Warn("input poll failed", "error", res.Poll.Err)
	}

	wr, err := b.writer.Write(ctx, now)
	res.Write = wr
	if err != nil {
		return res, err
	}

	if err := b.panel.Show(b.tracker.Snapshot(), wr.Attempted > 0); err != nil {
		b.log.Warn("indicator update failed", "error", err)
	}

	return res, nil
}

// Run ticks at the configured period until ctx is done.
// One goroutine. No overlap: a slow tick delays the next one.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	b.log.Info("bridge running", "tick", b.tick.String(), "groups", len(b.poller.Groups()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := b.Tick(ctx, b.now()); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return fmt.Errorf("bridge: %w", err)
			}
		}
	}
}

// Close releases the input hardware and the bus.
func (b *Bridge) Close() error {
	return errors.Join(b.poller.Close(), b.bus.Close())
}
