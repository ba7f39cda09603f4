// internal/canbus/logged.go
package canbus

import (
	"context"
	"log/slog"
)

// NewLoggedBus wraps the given Bus and logs every send at level and every
// send or restart error at Error.
func NewLoggedBus(inner Bus, logger *slog.Logger, level slog.Level) Bus {
	return &loggedBus{inner: inner, logger: logger, level: level}
}

type loggedBus struct {
	inner  Bus
	logger *slog.Logger
	level  slog.Level
}

func (l *loggedBus) Send(ctx context.Context, frame Frame) error {
	l.logger.Log(ctx, l.level, "canbus send",
		"id", frame.ID,
		"len", int(frame.Len),
		"frame", frame.String(),
	)
	err := l.inner.Send(ctx, frame)
	if err != nil {
		l.logger.Log(ctx, slog.LevelError, "canbus send error",
			"id", frame.ID,
			"error", err,
		)
	}
	return err
}

func (l *loggedBus) Restart(ctx context.Context) error {
	err := l.inner.Restart(ctx)
	if err != nil {
		l.logger.Log(ctx, slog.LevelError, "canbus restart error", "error", err)
	} else {
		l.logger.Log(ctx, slog.LevelWarn, "canbus restarted")
	}
	return err
}

// Close forwards to the inner Bus without logging.
func (l *loggedBus) Close() error {
	return l.inner.Close()
}
