// internal/input/encoder.go
package input

// Counter is a raw quadrature position counter. The count only moves; it
// is never reset by the reader, so reading cannot race the peripheral.
type Counter interface {
	Position() int
}

// EncoderSource turns an absolute counter into steps since the previous read.
type EncoderSource struct {
	counter Counter
	divisor int
	last    int
}

// NewEncoderSource starts counting from the counter's current position.
// divisor is the number of counts per reported step (<= 1 means 1).
func NewEncoderSource(c Counter, divisor int) *EncoderSource {
	if divisor < 1 {
		divisor = 1
	}
	return &EncoderSource{counter: c, divisor: divisor, last: c.Position()}
}

// ReadAndReset returns the whole steps accumulated since the previous call
// and consumes them. Counts that do not yet make a whole step stay pending,
// so nothing is lost or counted twice across calls.
func (e *EncoderSource) ReadAndReset() int {
	pos := e.counter.Position()
	steps := (pos - e.last) / e.divisor
	e.last += steps * e.divisor
	return steps
}
