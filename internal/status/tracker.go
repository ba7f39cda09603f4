// internal/status/tracker.go
package status

import (
	"context"
	"log/slog"
)

// Restarter resets the bus controller after a failed send.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Tracker observes transmit outcomes and drives recovery.
//
// A single failure faults the bus and triggers a restart in the same tick;
// only a streak of more than threshold consecutive successes brings it back
// to healthy, so a marginal bus does not flicker between states.
type Tracker struct {
	threshold int
	restarter Restarter
	log       *slog.Logger

	snap Snapshot
}

// NewTracker starts in HealthRecovering: nothing has been sent yet.
func NewTracker(threshold int, r Restarter, log *slog.Logger) *Tracker {
	if threshold <= 0 {
		threshold = DefaultHealthyStreak
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		threshold: threshold,
		restarter: r,
		log:       log,
		snap:      Snapshot{Health: HealthRecovering},
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Success records a successful send.
func (t *Tracker) Success() {
	t.snap.ConsecutiveSuccesses++
	next := HealthRecovering
	if t.snap.ConsecutiveSuccesses > t.threshold {
		next = HealthHealthy
	}
	t.transition(next)
}

// Failure records a failed send and restarts the bus. The restart error is
// returned for logging only; the next failure will restart again.
func (t *Tracker) Failure(ctx context.Context, cause error) error {
	t.snap.ConsecutiveSuccesses = 0
	t.snap.Failures++
	t.transition(HealthFault)
	t.log.Warn("bus send failed", "error", cause, "failures", t.snap.Failures)

	if t.restarter == nil {
		return nil
	}
	t.snap.Restarts++
	if err := t.restarter.Restart(ctx); err != nil {
		t.log.Error("bus restart failed", "error", err)
		return err
	}
	return nil
}

func (t *Tracker) transition(next Health) {
	if t.snap.Health == next {
		return
	}
	t.log.Info("bus health", "from", t.snap.Health.String(), "to", next.String())
	t.snap.Health = next
}
