// internal/canbus/frame.go
package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Frame is a classical CAN 2.0A data frame.
// The panel only ever transmits standard (11-bit) identifiers.
type Frame struct {
	ID   uint32 // 11-bit arbitration id
	Len  uint8  // 0..8
	Data [8]byte
}

// MaxStdID is the largest standard (non-extended) identifier.
const MaxStdID = 0x7FF

// MaxLen is the classical CAN payload limit.
const MaxLen = 8

var (
	ErrInvalidID  = errors.New("canbus: invalid identifier")
	ErrInvalidLen = errors.New("canbus: invalid data length")
)

// NewFrame builds a validated frame from an id and payload.
func NewFrame(id uint32, payload []byte) (Frame, error) {
	if len(payload) > MaxLen {
		return Frame{}, ErrInvalidLen
	}
	f := Frame{ID: id, Len: uint8(len(payload))}
	copy(f.Data[:], payload)
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Validate returns an error if the frame cannot go on the wire.
func (f Frame) Validate() error {
	if f.Len > MaxLen {
		return ErrInvalidLen
	}
	if f.ID > MaxStdID {
		return ErrInvalidID
	}
	return nil
}

// Payload returns the used part of Data.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > MaxLen {
		n = MaxLen
	}
	return f.Data[:n]
}

// String renders the frame as "ID [LEN] B0 B1 ...", e.g. "300 [3] 90 00 00".
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%03X [%d]", f.ID, f.Len)
	for _, v := range f.Payload() {
		fmt.Fprintf(&b, " %02X", v)
	}
	return b.String()
}

// MarshalBinary encodes the frame in the Linux SocketCAN "struct can_frame"
// layout (16 bytes, little-endian):
//
//	0..3  can_id
//	4     can_dlc
//	5..7  padding
//	8..15 data
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], f.ID)
	buf[4] = f.Len
	copy(buf[8:16], f.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes a frame from the SocketCAN can_frame layout.
// Extended and RTR frames are rejected.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("canbus: need 16 bytes, got %d", len(data))
	}
	const (
		canEffFlag = 0x80000000
		canRtrFlag = 0x40000000
	)
	id := binary.LittleEndian.Uint32(data[0:4])
	if id&(canEffFlag|canRtrFlag) != 0 {
		return ErrInvalidID
	}
	f.ID = id
	f.Len = data[4]
	copy(f.Data[:], data[8:16])
	return f.Validate()
}
