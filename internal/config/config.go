// Package config loads the daemon configuration from a YAML file and fills
// in defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/streetlight/internal/gpio"
	"github.com/sweeney/streetlight/internal/logic"
)

// MaxWindow bounds the smoothing window size.
const MaxWindow = 50

// Config holds all configuration for the streetlight daemon.
type Config struct {
	Sensor      SensorConfig      `yaml:"sensor"`
	Relay       RelayConfig       `yaml:"relay"`
	Thresholds  ThresholdsConfig  `yaml:"thresholds"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SensorConfig contains light sensor settings.
type SensorConfig struct {
	Device         string        `yaml:"device"`          // IIO sysfs attribute path
	SampleInterval time.Duration `yaml:"sample_interval"` // default 50ms
	Window         int           `yaml:"window"`          // moving average length, default 20
}

// RelayConfig contains relay output settings.
type RelayConfig struct {
	Pin          int  `yaml:"pin"`           // BCM pin driving the relay
	ActiveLow    bool `yaml:"active_low"`    // relay boards energized by a low level
	IndicatorPin int  `yaml:"indicator_pin"` // mirrors the light state; -1 disables
}

// ThresholdsConfig contains the default hysteresis thresholds, used until
// persisted settings or calibration override them.
type ThresholdsConfig struct {
	On     int `yaml:"on"`      // default 480
	Off    int `yaml:"off"`     // default 520
	MinGap int `yaml:"min_gap"` // default 20
}

// CalibrationConfig contains startup auto-calibration settings.
type CalibrationConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Window      time.Duration `yaml:"window"`       // default 15s
	MinRange    int           `yaml:"min_range"`    // default 50
	OnFraction  float64       `yaml:"on_fraction"`  // default 0.35
	OffFraction float64       `yaml:"off_fraction"` // default 0.55
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Interval time.Duration `yaml:"interval"` // default 2s
	Broker   string        `yaml:"broker"`   // MQTT broker URL; empty disables MQTT
}

// HTTPConfig contains HTTP status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// DatabaseConfig contains settings-store location.
type DatabaseConfig struct {
	Path string `yaml:"path"` // default streetlight.db
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error; default info
	Pretty bool   `yaml:"pretty"` // human-readable console output
}

// Load reads configuration from the YAML file at path. An empty path yields
// pure defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	// Calibration defaults on unless the file says otherwise. The other
	// bool zero values already mean the right thing.
	cfg.Calibration.Enabled = true
	cfg.Relay.IndicatorPin = -1

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults sets default values for any unset fields.
func (c *Config) ApplyDefaults() {
	if c.Sensor.Device == "" {
		c.Sensor.Device = gpio.DefaultSensorDevice
	}
	if c.Sensor.SampleInterval == 0 {
		c.Sensor.SampleInterval = 50 * time.Millisecond
	}
	if c.Sensor.Window == 0 {
		c.Sensor.Window = 20
	}
	if c.Relay.Pin == 0 {
		c.Relay.Pin = gpio.DefaultRelayPin
	}
	if c.Thresholds.On == 0 && c.Thresholds.Off == 0 {
		c.Thresholds.On = 480
		c.Thresholds.Off = 520
	}
	if c.Thresholds.MinGap == 0 {
		c.Thresholds.MinGap = 20
	}
	if c.Calibration.Window == 0 {
		c.Calibration.Window = 15 * time.Second
	}
	if c.Calibration.MinRange == 0 {
		c.Calibration.MinRange = 50
	}
	if c.Calibration.OnFraction == 0 {
		c.Calibration.OnFraction = 0.35
	}
	if c.Calibration.OffFraction == 0 {
		c.Calibration.OffFraction = 0.55
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 2 * time.Second
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "streetlight.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration-time invariants.
func (c *Config) Validate() error {
	if c.Sensor.Window < 1 || c.Sensor.Window > MaxWindow {
		return fmt.Errorf("sensor window %d out of range 1..%d", c.Sensor.Window, MaxWindow)
	}
	if c.Sensor.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %v", c.Sensor.SampleInterval)
	}
	if c.Thresholds.On < 0 || c.Thresholds.On > logic.MaxRaw {
		return fmt.Errorf("on threshold %d out of range 0..%d", c.Thresholds.On, logic.MaxRaw)
	}
	if c.Thresholds.Off < 0 || c.Thresholds.Off > logic.MaxRaw {
		return fmt.Errorf("off threshold %d out of range 0..%d", c.Thresholds.Off, logic.MaxRaw)
	}
	if c.Thresholds.MinGap < 1 {
		return fmt.Errorf("min gap must be at least 1, got %d", c.Thresholds.MinGap)
	}
	if c.Thresholds.Off < c.Thresholds.On+c.Thresholds.MinGap {
		return fmt.Errorf("off threshold %d must be at least on threshold %d + gap %d",
			c.Thresholds.Off, c.Thresholds.On, c.Thresholds.MinGap)
	}
	if f := c.Calibration.OnFraction; f <= 0 || f >= 1 {
		return fmt.Errorf("on fraction %v out of range (0, 1)", f)
	}
	if f := c.Calibration.OffFraction; f <= 0 || f >= 1 {
		return fmt.Errorf("off fraction %v out of range (0, 1)", f)
	}
	if c.Calibration.OffFraction <= c.Calibration.OnFraction {
		return fmt.Errorf("off fraction %v must exceed on fraction %v",
			c.Calibration.OffFraction, c.Calibration.OnFraction)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
