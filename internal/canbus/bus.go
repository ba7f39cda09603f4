// internal/canbus/bus.go
package canbus

import (
	"context"
	"errors"
	"fmt"
)

// Bus is the transmit side of a CAN connection.
//
// The bridge loop owns a Bus exclusively; implementations need not be safe
// for concurrent use unless documented.
type Bus interface {
	// Send transmits one frame. It must return once the context is done.
	Send(ctx context.Context, frame Frame) error

	// Restart resets the controller after a transmit failure.
	Restart(ctx context.Context) error

	// Close releases resources. Further calls may return ErrClosed.
	Close() error
}

// Receiver is implemented by transports that can also read frames
// (loopback endpoints). The panel itself never receives.
type Receiver interface {
	Receive(ctx context.Context) (Frame, error)
}

var (
	// ErrClosed indicates the bus or endpoint has been closed.
	ErrClosed = errors.New("canbus: closed")

	// ErrBusy indicates a previous bounded send is still in flight.
	ErrBusy = errors.New("canbus: previous send still in flight")
)

// TransportError marks a failure of the physical transport. It is the only
// error class the bridge recovers from by restarting the bus.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("canbus: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError unless it already is one.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
