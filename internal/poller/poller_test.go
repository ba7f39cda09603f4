// internal/poller/poller_test.go
package poller

import (
	"errors"
	"testing"
	"time"

	cfg "github.com/tamzrod/panel-canbridge/internal/config"
	"github.com/tamzrod/panel-canbridge/internal/group"
	"github.com/tamzrod/panel-canbridge/internal/input"
)

type fakeLine struct{ level bool }

func (l *fakeLine) Get() bool { return l.level }

type fakeCounter struct{ pos int }

func (c *fakeCounter) Position() int { return c.pos }

type fakeHardware struct {
	lines    map[int]*fakeLine
	counters []*fakeCounter
	keys     []*fakeLine

	refreshErr error
	refreshes  int
	onRefresh  func()
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{lines: make(map[int]*fakeLine)}
}

func (h *fakeHardware) Line(spec LineSpec) (input.Line, error) {
	l := &fakeLine{level: spec.Pull == PullUp}
	h.lines[spec.Pin] = l
	return l, nil
}

func (h *fakeHardware) Counter(CounterSpec) (input.Counter, error) {
	c := &fakeCounter{}
	h.counters = append(h.counters, c)
	return c, nil
}

func (h *fakeHardware) Matrix(spec MatrixSpec) ([]input.Line, error) {
	out := make([]input.Line, spec.Keys())
	h.keys = make([]*fakeLine, spec.Keys())
	for i := range out {
		h.keys[i] = &fakeLine{}
		out[i] = h.keys[i]
	}
	return out, nil
}

func (h *fakeHardware) Refresh() error {
	h.refreshes++
	if h.onRefresh != nil {
		h.onRefresh()
	}
	return h.refreshErr
}

func (h *fakeHardware) Close() error { return nil }

func pin(v int) *int { return &v }

func testConfig() *cfg.Config {
	c := &cfg.Config{
		Bridge:   cfg.BridgeConfig{NodeID: 0x90, DataID: 0x300},
		Bus:      cfg.BusConfig{Driver: "loopback"},
		Hardware: cfg.HardwareConfig{Driver: "rpio"},
		Matrix:   &cfg.MatrixConfig{Rows: []int{1, 2, 3, 4, 5}, Columns: []int{6, 7, 8, 9, 10, 11, 12, 13}},
		Groups: []cfg.GroupConfig{
			{
				Name:     "knobs",
				Index:    0,
				Encoders: []cfg.EncoderConfig{{A: 9, B: 10, Divisor: 2}, {A: 17, B: 27}},
				Buttons:  []cfg.ButtonConfig{{Pin: pin(4)}, {Pin: pin(22)}},
			},
			{
				Name:      "switches",
				Index:     32,
				Keys:      &cfg.KeyRange{First: 0, Count: 40},
				Repeating: []int{0, 2},
			},
		},
	}
	cfg.Normalize(c)
	return c
}

func build(t *testing.T) (*Poller, *fakeHardware, time.Time) {
	t.Helper()
	hw := newFakeHardware()
	t0 := time.Unix(1000, 0)
	p, err := Build(testConfig(), hw, t0)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}
	return p, hw, t0
}

func TestBuild_Groups(t *testing.T) {
	p, hw, _ := build(t)

	groups := p.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	knobs, switches := groups[0], groups[1]

	if knobs.Index != 0 || len(knobs.Encoders) != 2 || len(knobs.Buttons) != 2 {
		t.Fatalf("knobs: index=%d encoders=%d buttons=%d", knobs.Index, len(knobs.Encoders), len(knobs.Buttons))
	}
	if switches.Index != 32 || len(switches.Buttons) != group.FlagsPerGroup {
		t.Fatalf("switches: index=%d buttons=%d", switches.Index, len(switches.Buttons))
	}
	for k, b := range switches.Buttons {
		repeating := k == 0 || k == 2
		if b.OneShot == repeating {
			t.Fatalf("key %d: one_shot=%v", k, b.OneShot)
		}
	}
	if knobs.Buttons[0].OneShot {
		t.Fatalf("direct buttons default to repeating")
	}
	if hw.refreshes != 1 {
		t.Fatalf("expected one seeding refresh, got %d", hw.refreshes)
	}
}

func TestPollOnce_ButtonPressAfterDebounce(t *testing.T) {
	p, hw, t0 := build(t)
	knobs := p.Groups()[0]

	// Pulled-up button shorts to ground.
	hw.lines[4].level = false

	res := p.PollOnce(t0.Add(100 * time.Millisecond))
	if res.Err != nil || res.Changed != 0 || knobs.Changed {
		t.Fatalf("press must not be accepted before the settle interval: %+v", res)
	}

	res = p.PollOnce(t0.Add(200 * time.Millisecond))
	if res.Changed != 1 || !knobs.Changed {
		t.Fatalf("expected knobs changed, got %+v", res)
	}
	if !knobs.Buttons[0].Value() || knobs.Buttons[1].Value() {
		t.Fatalf("flags: %v", knobs.Flags())
	}
}

func TestPollOnce_MatrixOneShot(t *testing.T) {
	p, hw, t0 := build(t)
	switches := p.Groups()[1]

	hw.keys[5].level = true
	p.PollOnce(t0.Add(100 * time.Millisecond))
	p.PollOnce(t0.Add(200 * time.Millisecond))

	if !switches.Changed || !switches.Buttons[5].Value() {
		t.Fatalf("expected key 5 pending")
	}
	if switches.Buttons[5].State() != group.Armed {
		t.Fatalf("one-shot key must be armed")
	}
}

func TestPollOnce_EncoderDelta(t *testing.T) {
	p, hw, t0 := build(t)
	knobs := p.Groups()[0]

	// Divisor 2: four counts are two steps.
	hw.counters[0].pos = 4
	hw.counters[1].pos = -1

	p.PollOnce(t0.Add(100 * time.Millisecond))
	if !knobs.Changed {
		t.Fatalf("expected knobs changed")
	}
	got := knobs.Numbers()
	if got[0] != float64(input.Shape(2)) || got[1] != float64(input.Shape(-1)) {
		t.Fatalf("numbers=%v", got)
	}
}

func TestBuild_EncoderBaselineFromFirstSample(t *testing.T) {
	hw := newFakeHardware()
	// Counters only report the module's count once sampled.
	hw.onRefresh = func() {
		for _, c := range hw.counters {
			if c.pos == 0 {
				c.pos = 1000
			}
		}
	}
	t0 := time.Unix(1000, 0)
	p, err := Build(testConfig(), hw, t0)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}
	knobs := p.Groups()[0]

	p.PollOnce(t0.Add(100 * time.Millisecond))
	if knobs.Changed {
		t.Fatalf("startup count reported as rotation: numbers=%v", knobs.Numbers())
	}
	for _, e := range knobs.Encoders {
		if e.RawDelta != 0 {
			t.Fatalf("%s raw=%d want 0", e.Name, e.RawDelta)
		}
	}
}

func TestPollOnce_StartupLevelIsNotAnEdge(t *testing.T) {
	hw := newFakeHardware()
	c := testConfig()
	t0 := time.Unix(1000, 0)

	p, err := Build(c, hw, t0)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}
	for i := 1; i <= 5; i++ {
		p.PollOnce(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	for _, g := range p.Groups() {
		if g.Changed {
			t.Fatalf("group %s changed without input", g.Name)
		}
	}
}

func TestPollOnce_RefreshFailure(t *testing.T) {
	p, hw, t0 := build(t)
	switches := p.Groups()[1]

	hw.keys[1].level = true
	p.PollOnce(t0.Add(100 * time.Millisecond))
	p.PollOnce(t0.Add(200 * time.Millisecond))
	if !switches.Changed {
		t.Fatalf("expected key press")
	}

	// Deliver the pulse, then lose the hardware.
	switches.Sent(t0.Add(200*time.Millisecond), 200*time.Millisecond)
	hw.refreshErr = errors.New("remote io offline")

	res := p.PollOnce(t0.Add(500 * time.Millisecond))
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !switches.Changed || switches.Buttons[1].State() != group.Idle {
		t.Fatalf("one-shot clear must run even when the hardware is offline")
	}
}

func TestBuild_MatrixWithoutConfig(t *testing.T) {
	c := testConfig()
	c.Matrix = nil
	if _, err := Build(c, newFakeHardware(), time.Now()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
