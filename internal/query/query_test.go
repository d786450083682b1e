package query

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/backchannel"
	"github.com/printpipe/sidechannel-go/pkg/backend"
	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/mib"
	"github.com/printpipe/sidechannel-go/pkg/sidechannel"
	"github.com/printpipe/sidechannel-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const testTimeout = 2 * time.Second

func testDevice(t *testing.T) *backend.Device {
	t.Helper()
	m := backend.NewMIB()
	require.NoError(t, m.Set(mib.SysDescr, []byte("Acme Laser 9")))
	require.NoError(t, m.Set(mib.SysName, []byte("lp0")))
	require.NoError(t, m.Set(mib.PrtMarkerSuppliesLevel+".1.1", []byte{0x00, 0x4b}))

	return &backend.Device{
		DeviceID:  "MFG:Acme;MDL:Laser 9;",
		State:     wire.StateOnline | wire.StateMarkerLow,
		Bidi:      true,
		Connected: true,
		Community: "public",
		MIB:       m,
	}
}

// newRunner serves dev on a socket pair and returns a Runner on the filter
// end writing to out.
func newRunner(t *testing.T, dev *backend.Device, out *bytes.Buffer) *Runner {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	filter, device := fdio.FD(fds[0]), fdio.FD(fds[1])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		backend.NewServer(device, dev.Mux(), backend.Config{PollInterval: 10 * time.Millisecond}).Serve(ctx)
		device.Close()
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		filter.Close()
	})

	return &Runner{
		Side:    sidechannel.New(filter, sidechannel.Config{}),
		Timeout: testTimeout,
		Out:     out,
	}
}

func TestRunDeviceCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"reset"}, "OK\n"},
		{[]string{"drain"}, "OK\n"},
		{[]string{"bidi"}, "yes\n"},
		{[]string{"device-id"}, "MFG:Acme;MDL:Laser 9;\n"},
		{[]string{"state"}, "ONLINE|MARKER_LOW (0x41)\n"},
		{[]string{"connected"}, "yes\n"},
		{[]string{"community"}, "public\n"},
		{[]string{"STATE"}, "ONLINE|MARKER_LOW (0x41)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			var out bytes.Buffer
			r := newRunner(t, testDevice(t), &out)
			require.NoError(t, r.Run(tt.args))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunGet(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, testDevice(t), &out)

	require.NoError(t, r.Run([]string{"get", "sysDescr"}))
	assert.Equal(t, mib.SysDescr+" = \"Acme Laser 9\"\n", out.String())
}

func TestRunGetMissing(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, testDevice(t), &out)

	err := r.Run([]string{"get", ".1.3.6.1.2.1.1.6.0"})
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusNoResponse, se.Status)
	assert.Empty(t, out.String())
}

func TestRunWalk(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, testDevice(t), &out)

	require.NoError(t, r.Run([]string{"walk", "system"}))
	assert.Equal(t,
		mib.SysDescr+" = \"Acme Laser 9\"\n"+mib.SysName+" = \"lp0\"\n",
		out.String())
}

func TestRunWalkToEndOfTable(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, testDevice(t), &out)

	require.NoError(t, r.Run([]string{"walk", mib.PrtMarkerSuppliesLevel}))
	assert.Equal(t, mib.PrtMarkerSuppliesLevel+".1.1 = 0x004b\n", out.String())
}

func TestRunWalkEmptySubtree(t *testing.T) {
	var out bytes.Buffer
	r := newRunner(t, testDevice(t), &out)

	err := r.Run([]string{"walk", mib.PrtAlertTable})
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusNoResponse, se.Status)
}

func TestRunRemoteNotImplemented(t *testing.T) {
	dev := testDevice(t)
	dev.Community = ""

	var out bytes.Buffer
	r := newRunner(t, dev, &out)

	err := r.Run([]string{"community"})
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusNotImplemented, se.Status)
}

func TestRunUsageErrors(t *testing.T) {
	r := &Runner{Timeout: testTimeout, Out: &bytes.Buffer{}}

	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"unknown", []string{"print"}},
		{"extra argument", []string{"reset", "now"}},
		{"get without oid", []string{"get"}},
		{"walk with two oids", []string{"walk", "system", "printer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Run(tt.args)
			assert.True(t, errors.Is(err, ErrUsage), "got %v", err)
		})
	}
}

func TestRunBadOID(t *testing.T) {
	r := &Runner{Timeout: testTimeout, Out: &bytes.Buffer{}}
	err := r.Run([]string{"get", "not-a-name"})
	assert.ErrorIs(t, err, mib.ErrInvalidOID)
}

func TestRunRead(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	rd, wr := fdio.FD(p[0]), fdio.FD(p[1])
	defer rd.Close()

	_, err := unix.Write(int(wr), []byte("@PJL READY\r\n"))
	require.NoError(t, err)
	wr.Close()

	var out bytes.Buffer
	r := &Runner{
		Back:    backchannel.New(rd, backchannel.Config{}),
		Timeout: testTimeout,
		Out:     &out,
	}

	require.NoError(t, r.Run([]string{"read"}))
	assert.Equal(t, "\"@PJL READY\\r\\n\"\n", out.String())

	// The writer is gone now; EOF prints an empty value.
	out.Reset()
	require.NoError(t, r.Run([]string{"read", "16"}))
	assert.Equal(t, "\"\"\n", out.String())
}

func TestRunReadWithoutBackChannel(t *testing.T) {
	r := &Runner{Timeout: testTimeout, Out: &bytes.Buffer{}}
	assert.Error(t, r.Run([]string{"read"}))
}

func TestRunReadInvalidSize(t *testing.T) {
	r := &Runner{Back: backchannel.New(fdio.FD(-1), backchannel.Config{}), Out: &bytes.Buffer{}}
	assert.ErrorIs(t, r.Run([]string{"read", "zero"}), ErrUsage)
	assert.ErrorIs(t, r.Run([]string{"read", "1", "2"}), ErrUsage)
}

func TestCommands(t *testing.T) {
	names := make([]string, 0, len(Commands()))
	for _, c := range Commands() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"reset", "drain", "bidi", "device-id", "state",
		"connected", "community", "get", "walk", "read",
	}, names)

	_, ok := Lookup("walk")
	assert.True(t, ok)
	_, ok = Lookup("print")
	assert.False(t, ok)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `"lp0"`, formatValue([]byte("lp0")))
	assert.Equal(t, `"tab\there"`, formatValue([]byte("tab\there")))
	assert.Equal(t, "0x0102", formatValue([]byte{1, 2}))
}
