// internal/canbus/timeout.go
package canbus

import (
	"context"
	"sync/atomic"
	"time"
)

// WithTimeout bounds every Send and Restart of inner to d.
//
// The inner call runs on its own goroutine so a transport that ignores its
// context still cannot hold the tick past d. While an abandoned send is
// still running, further sends fail fast with ErrBusy. Restart is guarded
// separately so it can still reach a transport stuck in Send.
func WithTimeout(inner Bus, d time.Duration) Bus {
	return &boundedBus{inner: inner, timeout: d}
}

type boundedBus struct {
	inner   Bus
	timeout time.Duration

	sending    atomic.Bool
	restarting atomic.Bool
}

func (b *boundedBus) Send(ctx context.Context, frame Frame) error {
	return b.bounded(ctx, "send", &b.sending, func(ctx context.Context) error {
		return b.inner.Send(ctx, frame)
	})
}

func (b *boundedBus) Restart(ctx context.Context) error {
	return b.bounded(ctx, "restart", &b.restarting, b.inner.Restart)
}

func (b *boundedBus) Close() error {
	return b.inner.Close()
}

func (b *boundedBus) bounded(ctx context.Context, op string, inFlight *atomic.Bool, fn func(context.Context) error) error {
	if !inFlight.CompareAndSwap(false, true) {
		return Transport(op, ErrBusy)
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		err := fn(ctx)
		inFlight.Store(false)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return Transport(op, ctx.Err())
	}
}
