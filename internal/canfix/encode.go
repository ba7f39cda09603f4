// internal/canfix/encode.go
package canfix

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Values are the operands of one group encode. Numeric fields consume
// Numbers in order; flag fields consume Flags in order, LSB first.
// Flag bits past len(Flags) take the Fill value.
type Values struct {
	Numbers []float64
	Flags   []bool
	Fill    bool
}

// Codec encodes Values for one type descriptor and multiplier.
// It implements ValueEncoder.
type Codec struct {
	Type       Type
	Multiplier float64
}

// NewCodec parses the descriptor. A zero multiplier means 1.
func NewCodec(descriptor string, multiplier float64) (Codec, error) {
	t, err := ParseType(descriptor)
	if err != nil {
		return Codec{}, err
	}
	if multiplier == 0 {
		multiplier = 1
	}
	return Codec{Type: t, Multiplier: multiplier}, nil
}

// Encode packs v little-endian. Numbers are sent as round(n / multiplier)
// clamped to the field's range.
func (c Codec) Encode(v Values) ([]byte, error) {
	if len(v.Numbers) > c.Type.NumericSlots() {
		return nil, fmt.Errorf("canfix: %d numbers for %s", len(v.Numbers), c.Type)
	}
	if len(v.Flags) > c.Type.FlagBits() {
		return nil, fmt.Errorf("canfix: %d flags for %s", len(v.Flags), c.Type)
	}
	mult := c.Multiplier
	if mult == 0 {
		mult = 1
	}

	out := make([]byte, 0, c.Type.Size())
	ni, fi := 0, 0
	for _, f := range c.Type {
		for i := 0; i < f.Count; i++ {
			if f.Kind.IsFlags() {
				bits := f.Kind.Size() * 8
				var word uint16
				for b := 0; b < bits; b++ {
					set := v.Fill
					if fi < len(v.Flags) {
						set = v.Flags[fi]
					}
					fi++
					if set {
						word |= 1 << b
					}
				}
				out = append(out, byte(word))
				if bits == 16 {
					out = append(out, byte(word>>8))
				}
				continue
			}

			var n float64
			if ni < len(v.Numbers) {
				n = v.Numbers[ni]
			}
			ni++
			out = appendNumber(out, f.Kind, n/mult)
		}
	}
	return out, nil
}

func appendNumber(out []byte, k Kind, x float64) []byte {
	if k == Float {
		return binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(x)))
	}
	r := int64(math.Round(x))
	switch k {
	case Short:
		return append(out, byte(int8(clamp[int64](r, math.MinInt8, math.MaxInt8))))
	case UShort:
		return append(out, byte(clamp[int64](r, 0, math.MaxUint8)))
	case Int:
		return binary.LittleEndian.AppendUint16(out, uint16(int16(clamp[int64](r, math.MinInt16, math.MaxInt16))))
	case UInt:
		return binary.LittleEndian.AppendUint16(out, uint16(clamp[int64](r, 0, math.MaxUint16)))
	case DInt:
		return binary.LittleEndian.AppendUint32(out, uint32(int32(clamp[int64](r, math.MinInt32, math.MaxInt32))))
	case UDInt:
		return binary.LittleEndian.AppendUint32(out, uint32(clamp[int64](r, 0, math.MaxUint32)))
	}
	return out
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
