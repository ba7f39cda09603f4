// internal/canbus/socketcan_other.go
//go:build !linux || tinygo

package canbus

import "errors"

// DialSocketCAN is only available on Linux.
func DialSocketCAN(iface string) (Bus, error) {
	return nil, errors.New("canbus: socketcan requires linux")
}
