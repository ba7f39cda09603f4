// internal/input/debounce.go
package input

import "time"

// Line is a raw digital input. Get returns the electrical level (true = high).
type Line interface {
	Get() bool
}

// Debouncer filters a raw line: a new level is accepted only after the raw
// line has held it for the settle interval. Rose and Fell are true for
// exactly one Update per accepted transition.
type Debouncer struct {
	line     Line
	interval time.Duration

	stable     bool
	unstable   bool
	lastBounce time.Time
	changed    bool
}

// NewDebouncer samples the line once to seed its state, so no edge is
// reported for the level present at startup.
func NewDebouncer(line Line, interval time.Duration, now time.Time) *Debouncer {
	lvl := line.Get()
	return &Debouncer{
		line:       line,
		interval:   interval,
		stable:     lvl,
		unstable:   lvl,
		lastBounce: now,
	}
}

// Update samples the line once.
func (d *Debouncer) Update(now time.Time) {
	d.changed = false
	cur := d.line.Get()
	if cur != d.unstable {
		d.unstable = cur
		d.lastBounce = now
		return
	}
	if now.Sub(d.lastBounce) >= d.interval && cur != d.stable {
		d.stable = cur
		d.changed = true
	}
}

// Value is the debounced level.
func (d *Debouncer) Value() bool { return d.stable }

// Rose reports a low-to-high transition accepted by the last Update.
func (d *Debouncer) Rose() bool { return d.changed && d.stable }

// Fell reports a high-to-low transition accepted by the last Update.
func (d *Debouncer) Fell() bool { return d.changed && !d.stable }

// Button maps a debounced line to pressed/released. Buttons wired to
// ground with a pull-up are active low.
type Button struct {
	d         *Debouncer
	activeLow bool
}

// NewButton debounces line and interprets it with the given polarity.
func NewButton(line Line, interval time.Duration, activeLow bool, now time.Time) *Button {
	return &Button{d: NewDebouncer(line, interval, now), activeLow: activeLow}
}

func (b *Button) Update(now time.Time) { b.d.Update(now) }

// Level is true while the button is held.
func (b *Button) Level() bool { return b.d.Value() != b.activeLow }

// Pressed reports the press edge of the last Update.
func (b *Button) Pressed() bool {
	if b.activeLow {
		return b.d.Fell()
	}
	return b.d.Rose()
}

// Released reports the release edge of the last Update.
func (b *Button) Released() bool {
	if b.activeLow {
		return b.d.Rose()
	}
	return b.d.Fell()
}
