// internal/input/shape.go
package input

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// ShapeExponent is the acceleration exponent applied to fast rotation.
const ShapeExponent = 1.8

// Shape applies encoder acceleration: for |delta| > 2 the result is
// sign(delta) * floor(|delta|^1.8), otherwise delta is returned unchanged.
// The result saturates at the range of T.
func Shape[T constraints.Signed](delta T) T {
	if delta >= -2 && delta <= 2 {
		return delta
	}
	neg := delta < 0
	mag := float64(delta)
	if neg {
		mag = -mag
	}
	shaped := math.Floor(math.Pow(mag, ShapeExponent))

	bits := 8 * unsafe.Sizeof(delta)
	max := T(1)<<(bits-1) - 1
	if shaped >= float64(max) {
		if neg {
			return -max
		}
		return max
	}
	if neg {
		return -T(shaped)
	}
	return T(shaped)
}
