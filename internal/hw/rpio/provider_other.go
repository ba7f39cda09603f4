// internal/hw/rpio/provider_other.go
//go:build !linux || tinygo

package rpio

import (
	"errors"
	"time"

	"github.com/tamzrod/panel-canbridge/internal/poller"
)

const DefaultSample = time.Millisecond

// Provider is only available on Linux.
type Provider struct{ poller.Hardware }

func Open(time.Duration) (*Provider, error) {
	return nil, errors.New("rpio: requires linux")
}
