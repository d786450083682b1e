// Package query runs filter-side side-channel commands by name. It backs
// both the sc-query command line and its interactive shell.
package query

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/backchannel"
	"github.com/printpipe/sidechannel-go/pkg/mib"
	"github.com/printpipe/sidechannel-go/pkg/sidechannel"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// ErrUsage reports a command that was called with the wrong arguments.
var ErrUsage = errors.New("usage")

// Runner executes query commands against one side channel and an optional
// back channel.
type Runner struct {
	Side    *sidechannel.Channel
	Back    *backchannel.Channel
	Timeout time.Duration
	Out     io.Writer
}

// Command describes one runnable command.
type Command struct {
	Name  string
	Args  string
	Usage string
	run   func(r *Runner, args []string) error
}

var commands = []Command{
	{Name: "reset", Usage: "Soft-reset the device", run: (*Runner).reset},
	{Name: "drain", Usage: "Wait for queued output to reach the device", run: (*Runner).drain},
	{Name: "bidi", Usage: "Report whether the back channel is supported", run: (*Runner).bidi},
	{Name: "device-id", Usage: "Print the IEEE-1284 device ID", run: (*Runner).deviceID},
	{Name: "state", Usage: "Print the device state flags", run: (*Runner).state},
	{Name: "connected", Usage: "Report whether the device is connected", run: (*Runner).connected},
	{Name: "community", Usage: "Print the SNMP community name", run: (*Runner).community},
	{Name: "get", Args: "<oid|name>", Usage: "Fetch one SNMP value", run: (*Runner).get},
	{Name: "walk", Args: "<oid|name>", Usage: "Print every SNMP value under an OID", run: (*Runner).walk},
	{Name: "read", Args: "[size]", Usage: "Read pending back-channel data", run: (*Runner).read},
}

// Commands returns the available commands in display order.
func Commands() []Command {
	return append([]Command(nil), commands...)
}

// Lookup returns the command called name.
func Lookup(name string) (Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Run executes args[0] with the remaining arguments.
func (r *Runner) Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	c, ok := Lookup(strings.ToLower(args[0]))
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return c.run(r, args[1:])
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) reset(args []string) error {
	if err := noArgs("reset", args); err != nil {
		return err
	}
	if err := r.Side.SoftReset(r.Timeout); err != nil {
		return err
	}
	fmt.Fprintln(r.out(), "OK")
	return nil
}

func (r *Runner) drain(args []string) error {
	if err := noArgs("drain", args); err != nil {
		return err
	}
	if err := r.Side.DrainOutput(r.Timeout); err != nil {
		return err
	}
	fmt.Fprintln(r.out(), "OK")
	return nil
}

func (r *Runner) bidi(args []string) error {
	if err := noArgs("bidi", args); err != nil {
		return err
	}
	ok, err := r.Side.BidiSupported(r.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out(), yesNo(ok))
	return nil
}

func (r *Runner) deviceID(args []string) error {
	if err := noArgs("device-id", args); err != nil {
		return err
	}
	id, err := r.Side.DeviceID(r.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out(), id)
	return nil
}

func (r *Runner) state(args []string) error {
	if err := noArgs("state", args); err != nil {
		return err
	}
	s, err := r.Side.State(r.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out(), "%s (0x%02x)\n", s, uint8(s))
	return nil
}

func (r *Runner) connected(args []string) error {
	if err := noArgs("connected", args); err != nil {
		return err
	}
	ok, err := r.Side.Connected(r.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out(), yesNo(ok))
	return nil
}

func (r *Runner) community(args []string) error {
	if err := noArgs("community", args); err != nil {
		return err
	}
	name, err := r.Side.SNMPCommunity(r.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out(), name)
	return nil
}

func (r *Runner) get(args []string) error {
	oid, err := oidArg("get", args)
	if err != nil {
		return err
	}

	buf := make([]byte, wire.MaxData)
	status, n, err := r.Side.SNMPGet(oid, buf, r.Timeout)
	if err != nil {
		return err
	}
	if status != wire.StatusOK {
		return &wire.StatusError{Command: wire.CmdSNMPGet, Status: status}
	}
	fmt.Fprintf(r.out(), "%s = %s\n", oid, formatValue(buf[:n]))
	return nil
}

func (r *Runner) walk(args []string) error {
	oid, err := oidArg("walk", args)
	if err != nil {
		return err
	}

	count := 0
	status, err := r.Side.SNMPWalk(oid, r.Timeout, func(next string, value []byte) {
		count++
		fmt.Fprintf(r.out(), "%s = %s\n", next, formatValue(value))
	})
	if err != nil {
		return err
	}
	// Running off the end of the table is how most walks finish.
	if status != wire.StatusOK && !(status == wire.StatusNoResponse && count > 0) {
		return &wire.StatusError{Command: wire.CmdSNMPGetNext, Status: status}
	}
	return nil
}

func (r *Runner) read(args []string) error {
	if r.Back == nil {
		return errors.New("no back channel configured")
	}
	size := 4096
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: read [size]: invalid size %q", ErrUsage, args[0])
		}
		size = n
	default:
		return fmt.Errorf("%w: read [size]", ErrUsage)
	}

	buf := make([]byte, size)
	n, err := r.Back.Read(buf, r.Timeout)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(r.out(), formatValue(buf[:n]))
	return nil
}

func noArgs(name string, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: %s takes no arguments", ErrUsage, name)
	}
	return nil
}

func oidArg(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s <oid|name>", ErrUsage, name)
	}
	return mib.Resolve(args[0])
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// formatValue quotes printable values and hex-encodes the rest.
func formatValue(b []byte) string {
	s := string(b)
	if strconv.CanBackquote(strings.TrimRight(s, "\r\n")) {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("0x%x", b)
}
