// internal/canfix/frame.go
package canfix

import (
	"errors"
	"fmt"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
)

// ErrPayloadOverflow means header plus encoded value exceed 8 bytes.
// It is a configuration error and is caught when the plan is built.
var ErrPayloadOverflow = errors.New("canfix: payload exceeds 8 bytes")

// ValueEncoder turns a group's values into the value bytes of a frame.
// The framing never reinterprets the bytes; it only checks their length.
type ValueEncoder interface {
	Encode(v Values) ([]byte, error)
}

// BuildFrame assembles the wire frame for one group: arbitration id from the
// addressing mode, the 3 addressing bytes, then the encoded value bytes.
func BuildFrame(a Addressing, index uint8, enc ValueEncoder, v Values) (canbus.Frame, error) {
	value, err := enc.Encode(v)
	if err != nil {
		return canbus.Frame{}, fmt.Errorf("canfix: encode index %d: %w", index, err)
	}
	if HeaderLen+len(value) > canbus.MaxLen {
		return canbus.Frame{}, fmt.Errorf("%w: index %d needs %d", ErrPayloadOverflow, index, HeaderLen+len(value))
	}

	hdr := a.Header(index)
	payload := make([]byte, 0, canbus.MaxLen)
	payload = append(payload, hdr[:]...)
	payload = append(payload, value...)

	return canbus.NewFrame(a.ArbitrationID(), payload)
}
