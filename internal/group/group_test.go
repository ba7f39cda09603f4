// internal/group/group_test.go
package group

import (
	"testing"
	"time"
)

const guard = 200 * time.Millisecond

var t0 = time.Unix(0, 0)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

// transmit mimics one scheduler pass over a single group.
func transmit(g *Group, now time.Time, heartbeat int) (sent bool, flags []bool) {
	g.Expire(now)
	if !g.Due(heartbeat) {
		return false, nil
	}
	flags = g.Flags()
	g.Sent(now, guard)
	return true, flags
}

func TestOneShot_SingleTrueFramePerPress(t *testing.T) {
	b := &ButtonChannel{OneShot: true}
	g := &Group{Buttons: []*ButtonChannel{b}}

	if !b.Press() {
		t.Fatalf("press must mark the group changed")
	}
	g.Changed = true

	trueFrames := 0
	// held for two seconds, one tick every 100ms
	for ms := 0; ms <= 2000; ms += 100 {
		sent, flags := transmit(g, at(ms), 10)
		if sent && flags[0] {
			trueFrames++
		}
	}
	if trueFrames != 1 {
		t.Fatalf("one-shot sent true in %d frames, want 1", trueFrames)
	}
	if b.State() != Idle || b.Pending {
		t.Fatalf("one-shot not cleared: state=%s pending=%v", b.State(), b.Pending)
	}
	if !b.Level {
		t.Fatalf("physical level must still read held")
	}
}

func TestOneShot_ClearMarksChangedAfterGuard(t *testing.T) {
	b := &ButtonChannel{OneShot: true}
	g := &Group{Buttons: []*ButtonChannel{b}}
	g.Changed = b.Press()

	if sent, flags := transmit(g, at(0), 10); !sent || !flags[0] {
		t.Fatalf("expected pulse frame at t=0")
	}
	if sent, _ := transmit(g, at(100), 10); sent {
		t.Fatalf("nothing should be sent inside the guard window")
	}
	sent, flags := transmit(g, at(200), 10)
	if !sent || flags[0] {
		t.Fatalf("expected explicit false frame when guard expires, sent=%v flags=%v", sent, flags)
	}
}

func TestOneShot_ReleaseDoesNotCancelPulse(t *testing.T) {
	b := &ButtonChannel{OneShot: true}
	g := &Group{Buttons: []*ButtonChannel{b}}
	g.Changed = b.Press()

	if b.Release() {
		t.Fatalf("release of a one-shot must not mark changed")
	}
	if !b.Value() {
		t.Fatalf("pulse cancelled by release")
	}
	if sent, flags := transmit(g, at(0), 10); !sent || !flags[0] {
		t.Fatalf("expected pulse to be transmitted after an early release")
	}
}

func TestOneShot_PressInsideGuardRearms(t *testing.T) {
	b := &ButtonChannel{OneShot: true}
	g := &Group{Buttons: []*ButtonChannel{b}}
	g.Changed = b.Press()
	transmit(g, at(0), 10)

	b.Release()
	if b.Press() {
		t.Fatalf("press inside guard must wait for the clear")
	}
	sent, flags := transmit(g, at(200), 10)
	if !sent || !flags[0] {
		t.Fatalf("expected second pulse after clear, sent=%v flags=%v", sent, flags)
	}
	if b.State() != Armed {
		t.Fatalf("state=%s want armed", b.State())
	}
}

func TestRepeating_MirrorsLevel(t *testing.T) {
	b := &ButtonChannel{}
	g := &Group{Buttons: []*ButtonChannel{b}}

	g.Changed = b.Press()
	for ms := 0; ms <= 1500; ms += 100 {
		if sent, flags := transmit(g, at(ms), 10); sent && flags[0] != b.Level {
			t.Fatalf("t=%dms: sent %v while level is %v", ms, flags[0], b.Level)
		}
	}
	if !b.Release() {
		t.Fatalf("release of a repeating button must mark changed")
	}
	g.Changed = true
	if sent, flags := transmit(g, at(1600), 10); !sent || flags[0] {
		t.Fatalf("expected released frame")
	}
}

func TestGroup_HeartbeatPeriod(t *testing.T) {
	g := &Group{}
	const heartbeat = 10
	last := 0
	sends := 0
	for tick := 1; tick <= 100; tick++ {
		if g.Due(heartbeat) {
			g.Sent(at(tick*100), guard)
			if sends > 0 && tick-last != heartbeat+1 {
				t.Fatalf("heartbeat gap=%d want %d", tick-last, heartbeat+1)
			}
			last = tick
			sends++
		}
	}
	if sends != 9 {
		t.Fatalf("sends=%d want 9", sends)
	}
}

func TestEncoder_DisjunctiveChange(t *testing.T) {
	e := &EncoderChannel{}
	g := &Group{Encoders: []*EncoderChannel{e}}

	if e.Observe(0) {
		t.Fatalf("idle encoder reported change")
	}
	if !e.Observe(3) || e.Shaped != 7 {
		t.Fatalf("expected change with shaped 7, got %d", e.Shaped)
	}
	if got := g.Numbers(); got[0] != 7 {
		t.Fatalf("Numbers()=%v", got)
	}
	g.Sent(at(0), guard)
	if e.RawDelta != 0 || e.Shaped != 0 {
		t.Fatalf("delta not consumed after send")
	}
	if !e.Observe(0) {
		t.Fatalf("previous nonzero value must keep the group changed for one more tick")
	}
	if e.Observe(0) {
		t.Fatalf("two idle ticks must not report change")
	}
}

func TestGroup_FailedKeepsChanged(t *testing.T) {
	e := &EncoderChannel{}
	b := &ButtonChannel{OneShot: true}
	g := &Group{Encoders: []*EncoderChannel{e}, Buttons: []*ButtonChannel{b}}
	e.Observe(5)
	g.Changed = b.Press()

	g.Due(10)
	g.Failed()
	if !g.Changed {
		t.Fatalf("failed send must keep the group changed")
	}
	if e.RawDelta != 0 {
		t.Fatalf("encoder delta must be consumed on failure")
	}
	if !b.Value() {
		t.Fatalf("undelivered pulse must still be pending")
	}
}
