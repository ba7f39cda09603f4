// internal/canfix/address.go
package canfix

import (
	"errors"
	"fmt"

	"github.com/tamzrod/panel-canbridge/internal/canbus"
)

// Mode selects how the addressing header is interpreted by the receiver.
// A device uses exactly one mode for its whole life.
type Mode uint8

const (
	// Broadcast frames go out on the data id; the header names the sending node.
	Broadcast Mode = iota
	// NodeSpecific frames go out on the node's own id; the header names the data.
	NodeSpecific
)

func (m Mode) String() string {
	switch m {
	case Broadcast:
		return "broadcast"
	case NodeSpecific:
		return "node_specific"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Protocol constants. These define the wire format and MUST NOT be configurable.
const (
	// NodeSpecificBase is added to the node id to form a node-specific arbitration id.
	NodeSpecificBase = 0x6E0

	// ControlCodeBase is the control code of data index 0..31 (codes 0x0C..0x13).
	ControlCodeBase = 0x0C

	// HeaderLen is the number of addressing bytes at the start of every payload.
	HeaderLen = 3

	// IndexStride is the data index distance between two control codes.
	IndexStride = 32

	// MaxControlIndex is the largest index/IndexStride that maps to a control code.
	MaxControlIndex = 7
)

// Addressing is the fixed per-device addressing configuration.
type Addressing struct {
	Mode   Mode
	NodeID uint8
	DataID uint16 // 11-bit CAN-FIX parameter id
}

var errDataID = errors.New("canfix: data id exceeds 11 bits")

// Validate rejects addressings that cannot produce a standard frame.
func (a Addressing) Validate() error {
	if a.DataID > canbus.MaxStdID {
		return errDataID
	}
	if a.Mode != Broadcast && a.Mode != NodeSpecific {
		return fmt.Errorf("canfix: unknown addressing mode %d", a.Mode)
	}
	if id := a.ArbitrationID(); id > canbus.MaxStdID {
		return fmt.Errorf("canfix: arbitration id 0x%X exceeds 11 bits", id)
	}
	return nil
}

// ArbitrationID is data_id in broadcast mode and node_id + 0x6E0 in
// node-specific mode.
func (a Addressing) ArbitrationID() uint32 {
	if a.Mode == NodeSpecific {
		return uint32(a.NodeID) + NodeSpecificBase
	}
	return uint32(a.DataID)
}

// ControlCode maps a data index to its node-specific control code:
// index/32 + 0x0C.
func ControlCode(index uint8) byte {
	return index/IndexStride + ControlCodeBase
}

// Header returns the addressing bytes for a group with the given data index.
//
// Broadcast:     [node_id, index/32, 0x00]
// Node-specific: [control_code, offset & 0xFF, offset >> 8]
// where offset = (index % 32) << 11 | data_id.
func (a Addressing) Header(index uint8) [HeaderLen]byte {
	if a.Mode == NodeSpecific {
		offset := uint16(index%IndexStride)<<11 | a.DataID
		return [HeaderLen]byte{ControlCode(index), byte(offset & 0xFF), byte(offset >> 8)}
	}
	return [HeaderLen]byte{a.NodeID, index / IndexStride, 0x00}
}
