package sidechannel

import (
	"fmt"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// DoRequest sends cmd with no data and waits for the matching reply.
//
// It returns the remote status and the number of reply bytes copied into buf.
// A failure in either phase returns that phase's status and a non-nil error.
// A reply for a different command yields StatusBadMessage. A non-success
// remote status is not an error at this level.
func (c *Channel) DoRequest(cmd wire.Command, buf []byte, timeout time.Duration) (wire.Status, int, error) {
	start := time.Now()

	if err := c.Send(cmd, wire.StatusNone, nil, timeout); err != nil {
		return wire.StatusOf(err), 0, err
	}

	msg, err := c.Receive(buf, timeout)
	if err != nil {
		return msg.Status, 0, err
	}
	if msg.Command != cmd {
		err := fmt.Errorf("%w: %s request answered with %s", wire.ErrBadMessage, cmd, msg.Command)
		c.fail(log.DirectionIn, err, "request "+cmd.String())
		return wire.StatusBadMessage, 0, err
	}

	rt := time.Since(start)
	c.rec.Message(log.DirectionIn, log.LayerClient, log.MessageEvent{
		Command:   cmd,
		Status:    msg.Status,
		DataLen:   len(msg.Data),
		RoundTrip: &rt,
	})
	return msg.Status, len(msg.Data), nil
}

// request runs DoRequest with the shared reply buffer and turns a
// non-success remote status into a *wire.StatusError.
func (c *Channel) request(cmd wire.Command, timeout time.Duration) ([]byte, error) {
	buf := c.replyBuffer()
	status, n, err := c.DoRequest(cmd, buf, timeout)
	if err != nil {
		return nil, err
	}
	if status != wire.StatusOK {
		return nil, &wire.StatusError{Command: cmd, Status: status}
	}
	return buf[:n], nil
}

// requestByte runs a request whose reply is a single byte.
func (c *Channel) requestByte(cmd wire.Command, timeout time.Duration) (byte, error) {
	data, err := c.request(cmd, timeout)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: empty %s reply", wire.ErrBadMessage, cmd)
	}
	return data[0], nil
}

// SoftReset asks the backend to reset the device without cancelling jobs.
func (c *Channel) SoftReset(timeout time.Duration) error {
	_, err := c.request(wire.CmdSoftReset, timeout)
	return err
}

// DrainOutput asks the backend to finish sending all pending print data.
func (c *Channel) DrainOutput(timeout time.Duration) error {
	_, err := c.request(wire.CmdDrainOutput, timeout)
	return err
}

// BidiSupported reports whether the connection is bidirectional.
func (c *Channel) BidiSupported(timeout time.Duration) (bool, error) {
	b, err := c.requestByte(wire.CmdGetBidi, timeout)
	return b == wire.BidiSupported, err
}

// DeviceID returns the IEEE-1284 device ID string.
func (c *Channel) DeviceID(timeout time.Duration) (string, error) {
	data, err := c.request(wire.CmdGetDeviceID, timeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// State returns the device state bits.
func (c *Channel) State(timeout time.Duration) (wire.State, error) {
	b, err := c.requestByte(wire.CmdGetState, timeout)
	return wire.State(b), err
}

// Connected reports whether the device is connected.
func (c *Channel) Connected(timeout time.Duration) (bool, error) {
	b, err := c.requestByte(wire.CmdGetConnected, timeout)
	return b == wire.Connected, err
}

// SNMPCommunity returns the SNMP community name the backend uses.
func (c *Channel) SNMPCommunity(timeout time.Duration) (string, error) {
	data, err := c.request(wire.CmdSNMPCommunity, timeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
