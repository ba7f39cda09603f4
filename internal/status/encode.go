// internal/status/encode.go
package status

// RGB is an indicator color.
type RGB struct {
	R, G, B uint8
}

// Indicator colors. These values are what operators learn to read and
// MUST NOT be configurable.
var (
	ColorRed   = RGB{R: 255}
	ColorGreen = RGB{G: 255}
)

// Encode converts a Snapshot into the indicator color:
// red while faulted or recovering, green once healthy.
// No IO. No side effects.
func Encode(s Snapshot) RGB {
	if s.Health == HealthHealthy {
		return ColorGreen
	}
	return ColorRed
}
