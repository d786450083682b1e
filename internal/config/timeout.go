package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"gopkg.in/yaml.v3"
)

// Timeout is a duration where any negative value means wait forever.
// In YAML it is a Go duration string ("5s", "250ms") or "forever".
type Timeout time.Duration

// ParseTimeout parses a duration string or "forever".
func ParseTimeout(s string) (Timeout, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "forever") {
		return Timeout(fdio.Forever), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d < 0 {
		d = fdio.Forever
	}
	return Timeout(d), nil
}

// Duration returns the timeout as a time.Duration.
func (t Timeout) Duration() time.Duration {
	return time.Duration(t)
}

// IsForever reports whether the timeout never expires.
func (t Timeout) IsForever() bool {
	return t < 0
}

// String returns "forever" or the duration.
func (t Timeout) String() string {
	if t.IsForever() {
		return "forever"
	}
	return time.Duration(t).String()
}

// Set implements flag.Value.
func (t *Timeout) Set(s string) error {
	v, err := ParseTimeout(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timeout) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timeout must be a scalar", value.Line)
	}
	return t.Set(value.Value)
}

// MarshalYAML implements yaml.Marshaler.
func (t Timeout) MarshalYAML() (any, error) {
	return t.String(), nil
}
