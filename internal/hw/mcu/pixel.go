// internal/hw/mcu/pixel.go
//go:build tinygo

package mcu

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"github.com/tamzrod/panel-canbridge/internal/status"
)

// Pixel is a single WS2812 LED used as indicator.Driver. The LED has no
// brightness register, so brightness scales the color on every write.
type Pixel struct {
	dev        ws2812.Device
	color      status.RGB
	brightness float64
}

func NewPixel(pin machine.Pin) *Pixel {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Pixel{dev: ws2812.New(pin), brightness: 1}
}

func (p *Pixel) SetColor(c status.RGB) error {
	p.color = c
	return p.write()
}

func (p *Pixel) SetBrightness(level float64) error {
	if level == p.brightness {
		return nil
	}
	p.brightness = level
	return p.write()
}

func (p *Pixel) write() error {
	scale := func(v uint8) uint8 { return uint8(float64(v)*p.brightness + 0.5) }
	return p.dev.WriteColors([]color.RGBA{{
		R: scale(p.color.R),
		G: scale(p.color.G),
		B: scale(p.color.B),
		A: 255,
	}})
}
