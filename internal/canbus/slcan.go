// internal/canbus/slcan.go
//go:build !tinygo

package canbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SLCANConfig selects the serial adapter and CAN bitrate for an SLCAN
// (LAWICEL ASCII protocol) interface.
type SLCANConfig struct {
	Port    string // e.g. /dev/ttyACM0
	Baud    int    // serial speed; ignored by USB CDC adapters
	Bitrate int    // CAN bitrate in bit/s
}

// slcanPort is the part of serial.Port the SLCAN driver uses.
type slcanPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

const (
	slcanOK  = '\r'
	slcanErr = 0x07 // BEL

	slcanDefaultTimeout = 100 * time.Millisecond
)

var errSLCANNack = errors.New("slcan: adapter rejected command")

var slcanBitrates = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

type slcan struct {
	mu      sync.Mutex
	port    slcanPort
	bitrate byte
	closed  bool
}

// DialSLCAN opens the serial port and brings the CAN channel up.
func DialSLCAN(cfg SLCANConfig) (Bus, error) {
	code, ok := slcanBitrates[cfg.Bitrate]
	if !ok {
		return nil, fmt.Errorf("slcan: unsupported bitrate %d", cfg.Bitrate)
	}
	if cfg.Baud <= 0 {
		cfg.Baud = 115200
	}
	p, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("slcan: open %s: %w", cfg.Port, err)
	}
	s := &slcan{port: p, bitrate: code}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.openChannel(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// Send transmits one standard data frame ("tIIILDD..\r").
func (s *slcan) Send(ctx context.Context, frame Frame) error {
	cmd, err := encodeSLCAN(frame)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.command(ctx, cmd); err != nil {
		return Transport("send", err)
	}
	return nil
}

// Restart closes and reopens the CAN channel, clearing the adapter's error state.
func (s *slcan) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.openChannel(ctx); err != nil {
		return Transport("restart", err)
	}
	return nil
}

func (s *slcan) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), slcanDefaultTimeout)
	defer cancel()
	_ = s.command(ctx, "C")
	return s.port.Close()
}

// openChannel runs C (close, may fail if already closed), S<n>, O.
func (s *slcan) openChannel(ctx context.Context) error {
	_ = s.port.ResetInputBuffer()
	_ = s.command(ctx, "C")
	if err := s.command(ctx, "S"+string(s.bitrate)); err != nil {
		return fmt.Errorf("slcan: set bitrate: %w", err)
	}
	if err := s.command(ctx, "O"); err != nil {
		return fmt.Errorf("slcan: open channel: %w", err)
	}
	return nil
}

// command writes cmd+CR and waits for CR (ok, optionally prefixed by z/Z)
// or BEL (error) within the context deadline.
func (s *slcan) command(ctx context.Context, cmd string) error {
	timeout := slcanDefaultTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return err
	}
	if _, err := s.port.Write([]byte(cmd + "\r")); err != nil {
		return err
	}

	var b [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.port.Read(b[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return context.DeadlineExceeded
		}
		switch b[0] {
		case slcanOK:
			return nil
		case slcanErr:
			return errSLCANNack
		}
	}
}

// encodeSLCAN renders a standard data frame as an SLCAN transmit command
// without the trailing CR.
func encodeSLCAN(f Frame) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "t%03X%d", f.ID, f.Len)
	for _, v := range f.Payload() {
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String(), nil
}
