package sidechannel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Config configures a Channel.
type Config struct {
	// Logger is used for operational logging.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives capture events for every frame and failure.
	// If nil, capture is disabled.
	ProtocolLogger log.Logger

	// Role is stamped on capture events. Defaults to log.RoleFilter.
	Role log.Role
}

// Channel exchanges side-channel messages on a single descriptor.
type Channel struct {
	d       fdio.Descriptor
	logger  *slog.Logger
	rec     *log.Recorder
	scratch []byte
	reply   []byte
}

// New creates a Channel on d.
func New(d fdio.Descriptor, cfg Config) *Channel {
	fd := -1
	if n, ok := d.(fdio.FD); ok {
		fd = int(n)
	}

	var rec *log.Recorder
	if cfg.ProtocolLogger != nil {
		rec = log.NewRecorder(cfg.ProtocolLogger, cfg.Role, fd)
	}

	return &Channel{
		d:       d,
		logger:  cfg.Logger,
		rec:     rec,
		scratch: make([]byte, wire.MaxFrame),
	}
}

// ConnectionID returns the capture connection ID, or "" if capture is off.
func (c *Channel) ConnectionID() string {
	return c.rec.ConnectionID()
}

// Send writes one message.
//
// The command and data length are validated before any I/O. The descriptor
// must become writable within timeout; once writing has started it runs to
// completion or hard failure.
func (c *Channel) Send(cmd wire.Command, status wire.Status, data []byte, timeout time.Duration) error {
	frame, err := wire.EncodeFrame(cmd, status, data)
	if err != nil {
		return err
	}

	if err := fdio.WaitReady(c.d, fdio.Write, timeout); err != nil {
		c.fail(log.DirectionOut, err, "send "+cmd.String())
		return err
	}
	if err := fdio.WriteAll(c.d, frame); err != nil {
		c.fail(log.DirectionOut, err, "send "+cmd.String())
		return err
	}

	c.rec.Frame(log.DirectionOut, frame)
	c.rec.Wire(log.DirectionOut, wire.Message{Command: cmd, Status: status, Data: data})
	return nil
}

// Receive reads one message whose data is copied into buf.
//
// On success the returned Data aliases buf. On failure the message has
// Command CmdNone and Status set to the reason: timeout, I/O error, bad
// message, or too big when the declared length exceeds len(buf) or the
// bytes actually read.
func (c *Channel) Receive(buf []byte, timeout time.Duration) (wire.Message, error) {
	msg, err := c.receive(buf, timeout)
	if err != nil {
		c.fail(log.DirectionIn, err, "receive")
		return wire.Message{Command: wire.CmdNone, Status: wire.StatusOf(err)}, err
	}
	c.rec.Wire(log.DirectionIn, msg)
	return msg, nil
}

func (c *Channel) receive(buf []byte, timeout time.Duration) (wire.Message, error) {
	start := time.Now()
	if err := fdio.WaitReady(c.d, fdio.Read, timeout); err != nil {
		return wire.Message{}, err
	}

	n, err := fdio.ReadOnce(c.d, c.scratch, fdio.Remaining(timeout, start))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return wire.Message{}, fmt.Errorf("%w: %w", wire.ErrBadMessage, err)
		}
		return wire.Message{}, err
	}

	frame := c.scratch[:n]
	c.rec.Frame(log.DirectionIn, frame)

	h, err := wire.DecodeFrameInto(frame, buf)
	if err != nil {
		return wire.Message{}, err
	}
	return wire.Message{Command: h.Command, Status: h.Status, Data: buf[:h.Length]}, nil
}

// fail records a transport failure.
func (c *Channel) fail(dir log.Direction, err error, op string) {
	c.rec.Error(dir, log.LayerWire, err, op)
	if c.logger != nil {
		c.logger.Debug("side channel failure",
			"op", op,
			"status", wire.StatusOf(err).String(),
			"error", err)
	}
}

// replyBuffer returns the reusable full-size reply buffer.
func (c *Channel) replyBuffer() []byte {
	if c.reply == nil {
		c.reply = make([]byte, wire.MaxData)
	}
	return c.reply
}
