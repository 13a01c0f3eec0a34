// Package config loads leverctl settings from defaults, a YAML file and
// LEVER_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/pull"
	"github.com/allbin/go-lever/serialport"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. LEVER_POLL_INTERVAL.
const EnvPrefix = "LEVER"

// FileName is looked up in the working directory and $HOME/.config/leverctl
// when no explicit path is given.
const FileName = "leverctl"

type Config struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	TelemetryCapacity int           `mapstructure:"telemetry_capacity"`
	Simulate          bool          `mapstructure:"simulate"`
	Serial            Serial        `mapstructure:"serial"`
	Levers            []Lever       `mapstructure:"levers"`
	Pull              Pull          `mapstructure:"pull"`
	Log               Log           `mapstructure:"log"`
}

type Serial struct {
	BaudRate int           `mapstructure:"baud_rate"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Lever is one configured lever and the calibration of its potentiometer.
type Lever struct {
	Port        string  `mapstructure:"port" yaml:"port"`
	Force       int     `mapstructure:"force" yaml:"force"`
	PositionMin float64 `mapstructure:"position_min" yaml:"position_min"`
	PositionMax float64 `mapstructure:"position_max" yaml:"position_max"`
	Invert      bool    `mapstructure:"invert" yaml:"invert"`
}

// Position normalizes a potentiometer reading with the lever's calibration.
func (l Lever) Position(reading float64) float64 {
	return pull.Normalize(reading, l.PositionMin, l.PositionMax, l.Invert)
}

type Pull struct {
	RisingEdge  float64 `mapstructure:"rising_edge" yaml:"rising_edge"`
	FallingEdge float64 `mapstructure:"falling_edge" yaml:"falling_edge"`
}

// Detector returns a fresh pull detector with these thresholds.
func (p Pull) Detector() *pull.Detector {
	return &pull.Detector{RisingEdge: p.RisingEdge, FallingEdge: p.FallingEdge}
}

type Log struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// Default returns the built-in configuration: two USB levers.
func Default() *Config {
	return &Config{
		PollInterval:      lever.DefaultPollInterval,
		TelemetryCapacity: lever.DefaultTelemetryCapacity,
		Serial: Serial{
			BaudRate: device.DefaultBaudRate,
			Timeout:  device.DefaultTimeout,
		},
		Levers: []Lever{
			{Port: "/dev/ttyUSB0", PositionMin: device.SimPotentiometerMin, PositionMax: device.SimPotentiometerMax},
			{Port: "/dev/ttyUSB1", PositionMin: device.SimPotentiometerMin, PositionMax: device.SimPotentiometerMax},
		},
		Pull: Pull{RisingEdge: pull.DefaultRisingEdge, FallingEdge: pull.DefaultFallingEdge},
		Log: Log{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("telemetry_capacity", d.TelemetryCapacity)
	v.SetDefault("simulate", d.Simulate)
	v.SetDefault("serial.baud_rate", d.Serial.BaudRate)
	v.SetDefault("serial.timeout", d.Serial.Timeout)
	v.SetDefault("levers", leverMaps(d.Levers))
	v.SetDefault("pull.rising_edge", d.Pull.RisingEdge)
	v.SetDefault("pull.falling_edge", d.Pull.FallingEdge)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

func leverMaps(levers []Lever) []map[string]any {
	out := make([]map[string]any, len(levers))
	for i, l := range levers {
		out[i] = map[string]any{
			"port":         l.Port,
			"force":        l.Force,
			"position_min": l.PositionMin,
			"position_max": l.PositionMax,
			"invert":       l.Invert,
		}
	}
	return out
}

// Load reads the configuration. An empty path searches the default
// locations and tolerates a missing file; an explicit path must exist.
// Flags bound on v before the call take precedence over everything else.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.PollInterval <= 0 {
		return invalid("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.TelemetryCapacity < 1 {
		return invalid("telemetry_capacity must be at least 1, got %d", c.TelemetryCapacity)
	}
	probe := serialport.DefaultConfig()
	if err := serialport.WithBaudRate(c.Serial.BaudRate)(&probe); err != nil {
		return invalid("serial.baud_rate %d: %v", c.Serial.BaudRate, err)
	}
	if c.Serial.Timeout <= 0 || c.Serial.Timeout > serialport.MaxReadTimeout {
		return invalid("serial.timeout must be within (0, %v], got %v", serialport.MaxReadTimeout, c.Serial.Timeout)
	}
	if len(c.Levers) == 0 {
		return invalid("at least one lever must be configured")
	}
	seen := make(map[string]bool, len(c.Levers))
	for i, l := range c.Levers {
		switch {
		case l.Port == "":
			return invalid("levers[%d].port is empty", i)
		case seen[l.Port]:
			return invalid("levers[%d].port %s is used twice", i, l.Port)
		case l.Force < 0 || l.Force > device.MaxForce:
			return invalid("levers[%d].force must be within [0, %d], got %d", i, device.MaxForce, l.Force)
		}
		seen[l.Port] = true
	}
	if err := c.Pull.Detector().Validate(); err != nil {
		return invalid("pull: %v", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ParseLevel parses a slog level name such as "debug" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// Ports returns the configured lever ports in order.
func (c *Config) Ports() []string {
	ports := make([]string, len(c.Levers))
	for i, l := range c.Levers {
		ports[i] = l.Port
	}
	return ports
}

// fileConfig is the on-disk layout written by WriteDefault.
type fileConfig struct {
	PollInterval      string     `yaml:"poll_interval"`
	TelemetryCapacity int        `yaml:"telemetry_capacity"`
	Simulate          bool       `yaml:"simulate"`
	Serial            fileSerial `yaml:"serial"`
	Levers            []Lever    `yaml:"levers"`
	Pull              Pull       `yaml:"pull"`
	Log               Log        `yaml:"log"`
}

type fileSerial struct {
	BaudRate int    `yaml:"baud_rate"`
	Timeout  string `yaml:"timeout"`
}

// Marshal renders c as YAML that Load reads back.
func (c *Config) Marshal() ([]byte, error) {
	f := fileConfig{
		PollInterval:      c.PollInterval.String(),
		TelemetryCapacity: c.TelemetryCapacity,
		Simulate:          c.Simulate,
		Serial:            fileSerial{BaudRate: c.Serial.BaudRate, Timeout: c.Serial.Timeout.String()},
		Levers:            c.Levers,
		Pull:              c.Pull,
		Log:               c.Log,
	}
	return yaml.Marshal(&f)
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
