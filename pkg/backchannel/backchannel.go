// Package backchannel carries unframed device data between a backend and
// its filters, such as status replies a printer sends during a job.
package backchannel

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
	"golang.org/x/sys/unix"
)

// Config configures a Channel.
type Config struct {
	// Logger is used for operational logging.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives capture events for the bytes moved.
	// If nil, capture is disabled.
	ProtocolLogger log.Logger

	// Role is stamped on capture events.
	Role log.Role
}

// Channel reads and writes the back channel.
type Channel struct {
	d      fdio.Descriptor
	logger *slog.Logger
	rec    *log.Recorder
}

// New creates a back channel on d.
func New(d fdio.Descriptor, cfg Config) *Channel {
	fd := -1
	if n, ok := d.(fdio.FD); ok {
		fd = int(n)
	}

	var rec *log.Recorder
	if cfg.ProtocolLogger != nil {
		rec = log.NewRecorder(cfg.ProtocolLogger, cfg.Role, fd)
	}
	return &Channel{d: d, logger: cfg.Logger, rec: rec}
}

// Read waits up to timeout for data and reads whatever is available, at most
// len(p) bytes. io.EOF is returned once the writer has closed its end.
func (c *Channel) Read(p []byte, timeout time.Duration) (int, error) {
	start := time.Now()
	if err := fdio.WaitReady(c.d, fdio.Read, timeout); err != nil {
		c.fail(log.DirectionIn, err, "read")
		return 0, err
	}

	n, err := fdio.ReadOnce(c.d, p, fdio.Remaining(timeout, start))
	if err != nil {
		c.fail(log.DirectionIn, err, "read")
		return 0, err
	}

	c.rec.BackChannel(log.DirectionIn, p[:n])
	return n, nil
}

// Write writes all of p. Each chunk must become writable within timeout.
// The number of bytes written before a failure is returned with the error.
func (c *Channel) Write(p []byte, timeout time.Duration) (int, error) {
	total := 0
	for total < len(p) {
		if err := fdio.WaitReady(c.d, fdio.Write, timeout); err != nil {
			c.fail(log.DirectionOut, err, "write")
			return total, err
		}

		n, err := c.d.Write(p[total:])
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			err = fmt.Errorf("%w: write: %w", wire.ErrIO, err)
			c.fail(log.DirectionOut, err, "write")
			return total, err
		}
		total += n
	}

	c.rec.BackChannel(log.DirectionOut, p)
	return total, nil
}

func (c *Channel) fail(dir log.Direction, err error, op string) {
	c.rec.Error(dir, log.LayerTransport, err, "back channel "+op)
	if c.logger != nil {
		c.logger.Debug("back channel failure", "op", op, "error", err)
	}
}
