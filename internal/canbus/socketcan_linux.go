// internal/canbus/socketcan_linux.go
//go:build linux && !tinygo

package canbus

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// socketCAN implements Bus over a Linux raw CAN socket.
type socketCAN struct {
	iface string

	mu     sync.Mutex
	fd     int
	closed bool
}

// DialSocketCAN opens a raw CAN socket bound to the named interface (e.g. "can0").
// Receive filters are cleared: the panel only transmits.
func DialSocketCAN(iface string) (Bus, error) {
	fd, err := openSocketCAN(iface)
	if err != nil {
		return nil, err
	}
	return &socketCAN{iface: iface, fd: fd}, nil
}

func openSocketCAN(iface string) (int, error) {
	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		return -1, fmt.Errorf("canbus: interface %s: %w", iface, err)
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return -1, fmt.Errorf("canbus: socket: %w", err)
	}
	if err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, []unix.CanFilter{}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("canbus: clear filters: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: netIf.Index}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("canbus: bind %s: %w", iface, err)
	}
	return fd, nil
}

// Send writes one can_frame. The context deadline becomes SO_SNDTIMEO so a
// full transmit queue fails the write instead of blocking the tick.
func (s *socketCAN) Send(ctx context.Context, frame Frame) error {
	buf, err := frame.MarshalBinary()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return Transport("send", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var timeout time.Duration
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout < time.Millisecond {
			timeout = time.Millisecond
		}
	}
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return Transport("send", err)
	}

	n, err := unix.Write(s.fd, buf)
	if err != nil {
		return Transport("send", err)
	}
	if n != len(buf) {
		return Transport("send", fmt.Errorf("short write: %d of %d bytes", n, len(buf)))
	}
	return nil
}

// Restart closes and re-binds the socket, dropping anything queued in the
// old socket. Restarting a bus-off controller itself is left to the
// interface's restart-ms setting.
func (s *socketCAN) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_ = unix.Close(s.fd)
	fd, err := openSocketCAN(s.iface)
	if err != nil {
		s.fd = -1
		return Transport("restart", err)
	}
	s.fd = fd
	return nil
}

func (s *socketCAN) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.fd < 0 {
		return nil
	}
	return unix.Close(s.fd)
}
