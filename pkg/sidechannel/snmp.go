package sidechannel

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// WalkFunc is called with each OID and value found by SNMPWalk.
// value is only valid for the duration of the call.
type WalkFunc func(oid string, value []byte)

// SNMPGet asks the backend for the value of a numeric OID such as
// ".1.3.6.1.2.1.1.1.0".
//
// The value is copied into buf followed by a NUL byte and its length, without
// the NUL, is returned. buf must hold at least two bytes. A value that does
// not fit yields StatusTooBig. A non-success remote status is returned with
// a nil error and nothing copied.
func (c *Channel) SNMPGet(oid string, buf []byte, timeout time.Duration) (wire.Status, int, error) {
	if oid == "" {
		return wire.StatusBadMessage, 0, fmt.Errorf("%w: empty OID", wire.ErrInvalidArgument)
	}
	if len(buf) < 2 {
		return wire.StatusBadMessage, 0, fmt.Errorf("%w: buffer of %d byte(s)", wire.ErrInvalidArgument, len(buf))
	}
	buf[0] = 0

	status, _, value, err := c.snmpExchange(wire.CmdSNMPGet, oid, timeout)
	if err != nil || status != wire.StatusOK {
		return status, 0, err
	}

	if len(value)+1 > len(buf) {
		err := fmt.Errorf("%w: value of %d byte(s) for %s, buffer holds %d", wire.ErrTooBig, len(value), oid, len(buf))
		c.fail(log.DirectionIn, err, "snmp get")
		return wire.StatusTooBig, 0, err
	}

	copy(buf, value)
	buf[len(value)] = 0
	return wire.StatusOK, len(value), nil
}

// SNMPWalk queries every OID below oid with repeated get-next requests and
// calls fn for each one. timeout bounds each request, not the whole walk.
//
// The walk ends with StatusOK when the backend returns an OID outside the
// subtree or the same OID twice in a row. Only the immediately preceding OID
// is compared, so longer cycles are not detected. A non-success remote status
// ends the walk and is returned with a nil error; transport failures return
// their status and an error.
func (c *Channel) SNMPWalk(oid string, timeout time.Duration, fn WalkFunc) (wire.Status, error) {
	if oid == "" {
		return wire.StatusBadMessage, fmt.Errorf("%w: empty OID", wire.ErrInvalidArgument)
	}
	if fn == nil {
		return wire.StatusBadMessage, fmt.Errorf("%w: nil walk function", wire.ErrInvalidArgument)
	}

	prefix := oid + "."
	current := oid
	last := ""

	for {
		status, next, value, err := c.snmpExchange(wire.CmdSNMPGetNext, current, timeout)
		if err != nil || status != wire.StatusOK {
			return status, err
		}

		if !strings.HasPrefix(next, prefix) || next == last {
			return wire.StatusOK, nil
		}

		fn(next, value)
		current = next
		last = next
	}
}

// snmpExchange sends an OID request and splits an ok reply of the form
// "oid\0value". The returned value aliases the shared reply buffer.
func (c *Channel) snmpExchange(cmd wire.Command, oid string, timeout time.Duration) (wire.Status, string, []byte, error) {
	start := time.Now()

	payload := make([]byte, len(oid)+1)
	copy(payload, oid)

	if err := c.Send(cmd, wire.StatusNone, payload, timeout); err != nil {
		return wire.StatusOf(err), "", nil, err
	}

	msg, err := c.Receive(c.replyBuffer(), timeout)
	if err != nil {
		return msg.Status, "", nil, err
	}
	if msg.Command != cmd {
		err := fmt.Errorf("%w: %s request answered with %s", wire.ErrBadMessage, cmd, msg.Command)
		c.fail(log.DirectionIn, err, "snmp "+oid)
		return wire.StatusBadMessage, "", nil, err
	}

	rt := time.Since(start)
	event := log.MessageEvent{
		Command:   cmd,
		Status:    msg.Status,
		DataLen:   len(msg.Data),
		OID:       oid,
		RoundTrip: &rt,
	}

	if msg.Status != wire.StatusOK {
		c.rec.Message(log.DirectionIn, log.LayerClient, event)
		return msg.Status, "", nil, nil
	}

	i := bytes.IndexByte(msg.Data, 0)
	if i < 0 {
		err := fmt.Errorf("%w: %s reply has no OID terminator", wire.ErrBadMessage, cmd)
		c.fail(log.DirectionIn, err, "snmp "+oid)
		return wire.StatusBadMessage, "", nil, err
	}

	next, value := string(msg.Data[:i]), msg.Data[i+1:]
	event.OID = next
	event.Value = value
	c.rec.Message(log.DirectionIn, log.LayerClient, event)
	return wire.StatusOK, next, value, nil
}
