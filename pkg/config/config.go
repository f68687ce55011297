package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AutodetectPort selects the first Arduino-like USB serial port.
const AutodetectPort = "auto"

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	Window   WindowConfig   `yaml:"window"`
	Display  DisplayConfig  `yaml:"display"`
	Filter   FilterConfig   `yaml:"filter"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port             string        `yaml:"port"` // Port name or "auto"
	BaudRate         int           `yaml:"baud_rate"`
	BufferSize       int           `yaml:"buffer_size"`       // Readings channel capacity
	SetupWait        time.Duration `yaml:"setup_wait"`        // Time the board needs after the port opens (auto-reset)
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // Time to wait for the version report
}

// SamplingConfig contains board sampling parameters.
type SamplingConfig struct {
	RateHz  int `yaml:"rate_hz"` // 1-1000 Hz
	Channel int `yaml:"channel"` // Analog input (A0 = 0)
}

// WindowConfig contains scrolling window parameters.
type WindowConfig struct {
	Size            int           `yaml:"size"`             // Number of samples shown
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Redraw period
}

// DisplayConfig contains chart parameters.
type DisplayConfig struct {
	VRef   float64   `yaml:"vref"`   // Voltage that corresponds to a normalized reading of 1.0
	YMax   float64   `yaml:"y_max"`  // Upper Y limit in normalized units
	Marks  []float64 `yaml:"marks"`  // Extra Y ticks in volts
	Width  int       `yaml:"width"`  // Terminal chart width
	Height int       `yaml:"height"` // Terminal chart height
}

// FilterConfig contains per-sample filtering.
type FilterConfig struct {
	AverageSamples int `yaml:"average_samples"` // Moving average length (0 = disabled)
}

// MQTTConfig contains the optional stats publisher configuration.
type MQTTConfig struct {
	Broker       string        `yaml:"broker"` // Empty disables publishing
	Topic        string        `yaml:"topic"`
	ClientID     string        `yaml:"client_id"`
	PublishEvery int           `yaml:"publish_every"` // Publish once per N frames
	Timeout      time.Duration `yaml:"timeout"`
}

// MetricsConfig contains Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // Empty disables the endpoint
}

// LogConfig contains logger configuration.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MockConfig contains mock board configuration.
type MockConfig struct {
	Waveform  string  `yaml:"waveform"`  // sine or square
	Frequency float64 `yaml:"frequency"` // Hz
	Amplitude float64 `yaml:"amplitude"` // V
	Offset    float64 `yaml:"offset"`    // V
	Noise     float64 `yaml:"noise"`     // V
}

// SamplingInterval returns the board sampling interval for the configured rate.
func (s SamplingConfig) SamplingInterval() time.Duration {
	if s.RateHz <= 0 {
		return 0
	}
	return time.Duration(1000/s.RateHz) * time.Millisecond
}

// EffectiveRateHz is the rate the board actually samples at. The interval
// is sent in whole milliseconds, so rates that do not divide 1000 run faster
// than RateHz.
func (s SamplingConfig) EffectiveRateHz() float64 {
	interval := s.SamplingInterval()
	if interval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(interval)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:             AutodetectPort,
			BaudRate:         57600,
			BufferSize:       1000,
			SetupWait:        2 * time.Second,
			HandshakeTimeout: 5 * time.Second,
		},
		Sampling: SamplingConfig{
			RateHz:  100,
			Channel: 0,
		},
		Window: WindowConfig{
			Size:            500,
			RefreshInterval: 100 * time.Millisecond,
		},
		Display: DisplayConfig{
			VRef:   5.0, // Firmata reports 5V as 1.0
			YMax:   1.5,
			Marks:  []float64{3.3},
			Width:  100,
			Height: 25,
		},
		Filter: FilterConfig{
			AverageSamples: 0,
		},
		MQTT: MQTTConfig{
			Topic:        "goscope/stats",
			ClientID:     "goscope",
			PublishEvery: 10,
			Timeout:      5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Mock: MockConfig{
			Waveform:  "sine",
			Frequency: 1.0,
			Amplitude: 1.65,
			Offset:    1.65,
			Noise:     0.02,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Sampling.RateHz < 1 || c.Sampling.RateHz > 1000 {
		errs = append(errs, fmt.Errorf("sampling.rate_hz must be within 1..1000, got %d", c.Sampling.RateHz))
	}
	if c.Sampling.Channel < 0 || c.Sampling.Channel > 15 {
		errs = append(errs, fmt.Errorf("sampling.channel must be within 0..15, got %d", c.Sampling.Channel))
	}
	if c.Window.Size <= 0 {
		errs = append(errs, fmt.Errorf("window.size must be positive, got %d", c.Window.Size))
	}
	if c.Window.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("window.refresh_interval must be positive, got %s", c.Window.RefreshInterval))
	}
	if c.Display.VRef <= 0 {
		errs = append(errs, fmt.Errorf("display.vref must be positive, got %g", c.Display.VRef))
	}
	if c.Display.YMax <= 0 {
		errs = append(errs, fmt.Errorf("display.y_max must be positive, got %g", c.Display.YMax))
	}
	return errors.Join(errs...)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize == 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}
	if c.Serial.HandshakeTimeout == 0 {
		c.Serial.HandshakeTimeout = def.Serial.HandshakeTimeout
	}

	if c.Sampling.RateHz == 0 {
		c.Sampling.RateHz = def.Sampling.RateHz
	}

	if c.Window.Size == 0 {
		c.Window.Size = def.Window.Size
	}
	if c.Window.RefreshInterval == 0 {
		c.Window.RefreshInterval = def.Window.RefreshInterval
	}

	if c.Display.VRef == 0 {
		c.Display.VRef = def.Display.VRef
	}
	if c.Display.YMax == 0 {
		c.Display.YMax = def.Display.YMax
	}
	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}
	if c.Display.Height == 0 {
		c.Display.Height = def.Display.Height
	}

	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.PublishEvery == 0 {
		c.MQTT.PublishEvery = def.MQTT.PublishEvery
	}
	if c.MQTT.Timeout == 0 {
		c.MQTT.Timeout = def.MQTT.Timeout
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.Waveform == "" {
		c.Mock.Waveform = def.Mock.Waveform
	}
	if c.Mock.Frequency == 0 {
		c.Mock.Frequency = def.Mock.Frequency
	}
}
