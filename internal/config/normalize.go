// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTickMs          = 100
	DefaultHeartbeatTicks  = 10
	DefaultOneShotGuardMs  = 200
	DefaultHealthyStreak   = 5
	DefaultSendTimeoutMs   = 50
	DefaultButtonDebounce  = 50
	DefaultMatrixDebounce  = 80
	DefaultBrightness      = 0.05
	DefaultBitrate         = 250000
	DefaultSerialBaud      = 115200
	DefaultModbusBaud      = 19200
	DefaultModbusTimeoutMs = 50

	EncoderGroupType = "INT[2],BYTE"
	ButtonGroupType  = "BYTE[5]"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	b := &cfg.Bridge
	setDefault(&b.TickMs, DefaultTickMs)
	setDefault(&b.HeartbeatTicks, DefaultHeartbeatTicks)
	setDefault(&b.OneShotGuardMs, DefaultOneShotGuardMs)
	setDefault(&b.HealthyStreak, DefaultHealthyStreak)
	setDefault(&b.SendTimeoutMs, DefaultSendTimeoutMs)

	setDefault(&cfg.Bus.Baud, DefaultSerialBaud)
	setDefault(&cfg.Bus.Bitrate, DefaultBitrate)

	if cfg.Indicator.Driver == "" {
		cfg.Indicator.Driver = "log"
	}
	if cfg.Indicator.Brightness == nil {
		v := DefaultBrightness
		cfg.Indicator.Brightness = &v
	}

	if m := cfg.Hardware.Modbus; m != nil {
		setDefault(&m.Baud, DefaultModbusBaud)
		setDefault(&m.TimeoutMs, DefaultModbusTimeoutMs)
		if m.UnitID == 0 {
			m.UnitID = 1
		}
	}

	if cfg.Matrix != nil {
		setDefault(&cfg.Matrix.DebounceMs, DefaultMatrixDebounce)
	}

	for gi := range cfg.Groups {
		g := &cfg.Groups[gi]

		if g.Type == "" {
			if g.Keys != nil {
				g.Type = ButtonGroupType
			} else {
				g.Type = EncoderGroupType
			}
		}
		if g.Multiplier == 0 {
			g.Multiplier = 1
		}
		// Encoder groups pad their flag byte with ones; key groups pad
		// with released keys.
		if g.Fill == nil {
			fill := g.Keys == nil
			g.Fill = &fill
		}

		for ei := range g.Encoders {
			setDefault(&g.Encoders[ei].Divisor, 1)
		}

		for bi := range g.Buttons {
			btn := &g.Buttons[bi]
			if btn.Pull == "" {
				btn.Pull = "up"
			}
			// Pulled-up buttons short to ground when pressed.
			if btn.Invert == nil {
				inv := btn.Pull == "up"
				btn.Invert = &inv
			}
			if btn.DebounceMs == 0 {
				if btn.Key != nil && cfg.Matrix != nil {
					btn.DebounceMs = cfg.Matrix.DebounceMs
				} else {
					btn.DebounceMs = DefaultButtonDebounce
				}
			}
		}
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
