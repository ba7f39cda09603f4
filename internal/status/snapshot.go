// internal/status/snapshot.go
package status

// Snapshot is the tracker state handed to the indicator.
// It contains no logic.
type Snapshot struct {
	Health               Health
	ConsecutiveSuccesses int
	Failures             uint32
	Restarts             uint32
}
