// internal/canbus/slcan_test.go
//go:build !tinygo

package canbus

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// fakePort answers every command with a scripted reply.
type fakePort struct {
	written bytes.Buffer
	replies [][]byte
	pending []byte
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written.Write(b)
	if len(p.replies) > 0 {
		p.pending = append(p.pending, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		return 0, nil // read timeout
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Close() error                       { return nil }
func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }
func (p *fakePort) ResetInputBuffer() error            { p.pending = nil; return nil }

func TestEncodeSLCAN(t *testing.T) {
	f, _ := NewFrame(0x300, []byte{0x90, 0x00, 0x00, 0x03, 0x00, 0xFB, 0xFF, 0xFC})
	got, err := encodeSLCAN(f)
	if err != nil {
		t.Fatalf("encode err=%v", err)
	}
	if want := "t30089000000300FBFFFC"; got != want {
		t.Fatalf("encode=%q want %q", got, want)
	}
	if _, err := encodeSLCAN(Frame{ID: 0x800}); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestSLCAN_SendAckAndNack(t *testing.T) {
	port := &fakePort{replies: [][]byte{[]byte("z\r"), {slcanErr}}}
	s := &slcan{port: port, bitrate: '5'}
	f, _ := NewFrame(0x123, []byte{0xAB})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Send(ctx, f); err != nil {
		t.Fatalf("send ack: %v", err)
	}
	if got := port.written.String(); got != "t1231AB\r" {
		t.Fatalf("written=%q", got)
	}
	err := s.Send(ctx, f)
	if !IsTransport(err) || !errors.Is(err, errSLCANNack) {
		t.Fatalf("expected transport nack, got %v", err)
	}
}

func TestSLCAN_SendTimeout(t *testing.T) {
	s := &slcan{port: &fakePort{}, bitrate: '5'}
	f, _ := NewFrame(0x123, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Send(ctx, f); !IsTransport(err) {
		t.Fatalf("expected transport error on silent adapter, got %v", err)
	}
}

func TestSLCAN_RestartSequence(t *testing.T) {
	port := &fakePort{replies: [][]byte{{slcanErr}, []byte("\r"), []byte("\r")}}
	s := &slcan{port: port, bitrate: '5'}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := port.written.String(); got != "C\rS5\rO\r" {
		t.Fatalf("restart wrote %q", got)
	}
}
