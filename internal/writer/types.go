// internal/writer/types.go
package writer

import (
	"context"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/canfix"
)

// GroupPlan is the transmit geometry of one group.
type GroupPlan struct {
	Name  string
	Index uint8
	Codec canfix.Codec
	Fill  bool // value of unused flag bits
}

// Plan is the fully-built transmit plan.
type Plan struct {
	Addressing canfix.Addressing
	Heartbeat  int           // ticks
	Guard      time.Duration // one-shot guard
	Groups     []GroupPlan
}

// Result summarizes one Write.
type Result struct {
	Attempted int
	Sent      int
	Failed    int
}

// Writer transmits due groups.
type Writer interface {
	Write(ctx context.Context, now time.Time) (Result, error)
}
