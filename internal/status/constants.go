// internal/status/constants.go
package status

// Health is the bus health shown on the indicator.
type Health uint8

// ---- HEALTH CODES ----

// HealthFault is entered on any send failure.
const HealthFault Health = 0

// HealthRecovering covers boot and the success streak after a fault.
const HealthRecovering Health = 1

// HealthHealthy is entered once the success streak exceeds the threshold.
const HealthHealthy Health = 2

// ---- LIMITS ----

// DefaultHealthyStreak is the number of consecutive successes that must be
// exceeded before the bus is reported healthy.
const DefaultHealthyStreak = 5

func (h Health) String() string {
	switch h {
	case HealthFault:
		return "fault"
	case HealthRecovering:
		return "recovering"
	case HealthHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}
