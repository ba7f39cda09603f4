// internal/canfix/types.go
package canfix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is a CAN-FIX data type.
type Kind uint8

const (
	Byte   Kind = iota + 1 // 8 packed flags
	Word                   // 16 packed flags
	Short                  // int8
	UShort                 // uint8
	Int                    // int16
	UInt                   // uint16
	DInt                   // int32
	UDInt                  // uint32
	Float                  // float32
)

var kindNames = map[string]Kind{
	"BYTE":   Byte,
	"WORD":   Word,
	"SHORT":  Short,
	"USHORT": UShort,
	"INT":    Int,
	"UINT":   UInt,
	"DINT":   DInt,
	"UDINT":  UDInt,
	"FLOAT":  Float,
}

func (k Kind) String() string {
	switch k {
	case Byte:
		return "BYTE"
	case Word:
		return "WORD"
	case Short:
		return "SHORT"
	case UShort:
		return "USHORT"
	case Int:
		return "INT"
	case UInt:
		return "UINT"
	case DInt:
		return "DINT"
	case UDInt:
		return "UDINT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Size is the encoded size of one element in bytes.
func (k Kind) Size() int {
	switch k {
	case Byte, Short, UShort:
		return 1
	case Word, Int, UInt:
		return 2
	case DInt, UDInt, Float:
		return 4
	default:
		return 0
	}
}

// IsFlags reports whether the kind carries packed booleans.
func (k Kind) IsFlags() bool { return k == Byte || k == Word }

// Field is one element of a type descriptor, e.g. INT[2].
type Field struct {
	Kind  Kind
	Count int
}

// Type is a parsed, comma-separated type descriptor such as "INT[2],BYTE".
type Type []Field

// ErrUnknownType is returned for descriptors naming no known kind.
var ErrUnknownType = errors.New("canfix: unknown data type")

// ParseType parses a descriptor like "INT[2],BYTE" or "BYTE[5]".
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty descriptor", ErrUnknownType)
	}
	var t Type
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		count := 1
		if i := strings.IndexByte(part, '['); i >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, fmt.Errorf("canfix: malformed array in %q", part)
			}
			n, err := strconv.Atoi(part[i+1 : len(part)-1])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("canfix: bad array length in %q", part)
			}
			count = n
			part = part[:i]
		}
		k, ok := kindNames[part]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, part)
		}
		t = append(t, Field{Kind: k, Count: count})
	}
	return t, nil
}

// Size is the total encoded size in bytes.
func (t Type) Size() int {
	n := 0
	for _, f := range t {
		n += f.Kind.Size() * f.Count
	}
	return n
}

// NumericSlots is how many numeric values the type carries.
func (t Type) NumericSlots() int {
	n := 0
	for _, f := range t {
		if !f.Kind.IsFlags() {
			n += f.Count
		}
	}
	return n
}

// FlagBits is how many booleans the type carries.
func (t Type) FlagBits() int {
	n := 0
	for _, f := range t {
		if f.Kind.IsFlags() {
			n += f.Kind.Size() * 8 * f.Count
		}
	}
	return n
}

func (t Type) String() string {
	parts := make([]string, 0, len(t))
	for _, f := range t {
		if f.Count == 1 {
			parts = append(parts, f.Kind.String())
			continue
		}
		parts = append(parts, fmt.Sprintf("%s[%d]", f.Kind, f.Count))
	}
	return strings.Join(parts, ",")
}
