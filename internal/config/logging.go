package config

import (
	"context"
	"io"
	"log/slog"

	sclog "github.com/printpipe/sidechannel-go/pkg/log"
)

// NewLogger builds a text logger at the configured level.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// Capture is the protocol capture sink for a tool run.
type Capture struct {
	// Logger receives capture events. Nil when capture is off.
	Logger sclog.Logger

	file *sclog.FileLogger
}

// Close flushes and closes the capture file, if any.
func (c *Capture) Close() error {
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}

// OpenCapture opens the capture sinks: the protocol_log file when set, and
// the operational logger when it is enabled for debug output.
func (c *Config) OpenCapture(logger *slog.Logger) (*Capture, error) {
	capture := &Capture{}
	var sinks []sclog.Logger

	if c.ProtocolLog != "" {
		file, err := sclog.NewFileLogger(c.ProtocolLog)
		if err != nil {
			return nil, err
		}
		capture.file = file
		sinks = append(sinks, file)
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		sinks = append(sinks, sclog.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
	case 1:
		capture.Logger = sinks[0]
	default:
		capture.Logger = sclog.NewMultiLogger(sinks...)
	}
	return capture, nil
}
