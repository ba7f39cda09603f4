// internal/config/config.go
package config

type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge"`
	Bus       BusConfig       `yaml:"bus"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Matrix    *MatrixConfig   `yaml:"matrix"`
	Groups    []GroupConfig   `yaml:"groups"`
}

// ---- BRIDGE ----

type BridgeConfig struct {
	NodeID       int  `yaml:"node_id"`
	DataID       int  `yaml:"data_id"`
	NodeSpecific bool `yaml:"node_specific"`

	TickMs         int `yaml:"tick_ms"`
	HeartbeatTicks int `yaml:"heartbeat_ticks"`
	OneShotGuardMs int `yaml:"one_shot_guard_ms"`
	HealthyStreak  int `yaml:"healthy_streak"`
	SendTimeoutMs  int `yaml:"send_timeout_ms"`
}

// ---- BUS ----

type BusConfig struct {
	Driver    string `yaml:"driver"`    // socketcan | slcan | loopback
	Interface string `yaml:"interface"` // socketcan
	Port      string `yaml:"port"`      // slcan
	Baud      int    `yaml:"baud"`      // slcan serial speed
	Bitrate   int    `yaml:"bitrate"`   // slcan CAN bitrate
	Log       bool   `yaml:"log"`
}

// ---- INDICATOR ----

type IndicatorConfig struct {
	Driver     string   `yaml:"driver"` // log | none
	Brightness *float64 `yaml:"brightness"`
}

// ---- HARDWARE ----

type HardwareConfig struct {
	Driver string        `yaml:"driver"` // rpio | modbus | mcu
	Modbus *ModbusConfig `yaml:"modbus"`
}

type ModbusConfig struct {
	Endpoint  string `yaml:"endpoint"` // tcp://host:port or a serial device
	UnitID    uint8  `yaml:"unit_id"`
	Baud      int    `yaml:"baud"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type MatrixConfig struct {
	Rows       []int `yaml:"rows"`
	Columns    []int `yaml:"columns"`
	DebounceMs int   `yaml:"debounce_ms"`
}

// Keys returns the number of keys the matrix scans.
func (m *MatrixConfig) Keys() int {
	if m == nil {
		return 0
	}
	return len(m.Rows) * len(m.Columns)
}

// ---- GROUP ----

type GroupConfig struct {
	Name       string  `yaml:"name"`
	Index      int     `yaml:"index"`
	Type       string  `yaml:"type"`
	Multiplier float64 `yaml:"multiplier"`
	Fill       *bool   `yaml:"fill"` // value of unused flag bits

	Encoders []EncoderConfig `yaml:"encoders"`
	Buttons  []ButtonConfig  `yaml:"buttons"`

	// Matrix key range, one-shot unless listed in Repeating.
	Keys      *KeyRange `yaml:"keys"`
	Repeating []int     `yaml:"repeating"`
}

type KeyRange struct {
	First int `yaml:"first"`
	Count int `yaml:"count"`
}

// Contains reports whether key k lies in the range.
func (r KeyRange) Contains(k int) bool {
	return k >= r.First && k < r.First+r.Count
}

type EncoderConfig struct {
	Name     string `yaml:"name"`
	A        int    `yaml:"a"`
	B        int    `yaml:"b"`
	Divisor  int    `yaml:"divisor"`
	Register uint16 `yaml:"register"` // modbus counter register
}

type ButtonConfig struct {
	Name       string `yaml:"name"`
	Pin        *int   `yaml:"pin"` // direct line (GPIO pin or discrete input)
	Key        *int   `yaml:"key"` // matrix key
	Pull       string `yaml:"pull"`
	Invert     *bool  `yaml:"invert"`
	DebounceMs int    `yaml:"debounce_ms"`
	OneShot    bool   `yaml:"one_shot"`
}
