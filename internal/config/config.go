// Package config loads the YAML configuration shared by the side-channel
// tools.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/backend"
	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/mib"
	"github.com/printpipe/sidechannel-go/pkg/wire"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the per-operation timeout when none is configured.
const DefaultTimeout = Timeout(5 * time.Second)

// Config is the tool configuration.
type Config struct {
	// SideChannelFD is the side-channel descriptor number.
	SideChannelFD int `yaml:"side_channel_fd"`

	// BackChannelFD is the back-channel descriptor number.
	BackChannelFD int `yaml:"back_channel_fd"`

	// Timeout bounds each side-channel operation.
	Timeout Timeout `yaml:"timeout"`

	// ProtocolLog is the capture file path. Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Device facts served by the simulator.
	DeviceID  string     `yaml:"device_id"`
	State     string     `yaml:"state"`
	Bidi      bool       `yaml:"bidi"`
	Connected bool       `yaml:"connected"`
	Community string     `yaml:"community"`
	MIB       []MIBEntry `yaml:"mib"`

	// BackChannelData is written once to the back channel when the
	// simulator starts. Empty writes nothing.
	BackChannelData string `yaml:"back_channel_data"`
}

// MIBEntry is one simulated SNMP object.
type MIBEntry struct {
	OID   string `yaml:"oid"`
	Value string `yaml:"value"`
}

// LoadError describes a configuration that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SideChannelFD: fdio.SideChannelFD,
		BackChannelFD: fdio.BackChannelFD,
		Timeout:       DefaultTimeout,
		LogLevel:      "info",
		State:         "ONLINE",
		Connected:     true,
	}
}

// Parse parses YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if c.SideChannelFD < 0 {
		return fmt.Errorf("side_channel_fd %d is negative", c.SideChannelFD)
	}
	if c.BackChannelFD < 0 {
		return fmt.Errorf("back_channel_fd %d is negative", c.BackChannelFD)
	}
	if c.SideChannelFD == c.BackChannelFD {
		return fmt.Errorf("side_channel_fd and back_channel_fd are both %d", c.SideChannelFD)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.DeviceState(); err != nil {
		return err
	}
	for i, e := range c.MIB {
		if _, err := mib.Resolve(e.OID); err != nil {
			return fmt.Errorf("mib[%d]: %w", i, err)
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	return ParseLevel(c.LogLevel)
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// DeviceState parses the configured state.
func (c *Config) DeviceState() (wire.State, error) {
	s, ok := wire.ParseState(c.State)
	if !ok {
		return 0, fmt.Errorf("invalid state %q", c.State)
	}
	return s, nil
}

// Device builds the simulated device the configuration describes.
func (c *Config) Device() (*backend.Device, error) {
	state, err := c.DeviceState()
	if err != nil {
		return nil, err
	}

	dev := &backend.Device{
		DeviceID:  c.DeviceID,
		State:     state,
		Bidi:      c.Bidi,
		Connected: c.Connected,
		Community: c.Community,
	}

	if len(c.MIB) > 0 {
		dev.MIB = backend.NewMIB()
		for i, e := range c.MIB {
			oid, err := mib.Resolve(e.OID)
			if err != nil {
				return nil, fmt.Errorf("mib[%d]: %w", i, err)
			}
			if err := dev.MIB.Set(oid, []byte(e.Value)); err != nil {
				return nil, fmt.Errorf("mib[%d]: %w", i, err)
			}
		}
	}
	return dev, nil
}
