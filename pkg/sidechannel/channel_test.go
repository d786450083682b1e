package sidechannel

import (
	"io"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRawPair(t *testing.T) (*Channel, fdio.FD) {
	t.Helper()
	client, peer := socketPair(t)
	t.Cleanup(func() {
		client.Close()
		peer.Close()
	})
	return New(client, Config{}), peer
}

func TestSendReceiveRoundTrip(t *testing.T) {
	a, b := socketPair(t)
	defer a.Close()
	defer b.Close()

	sender := New(a, Config{})
	receiver := New(b, Config{Role: log.RoleBackend})

	data := []byte("MFG:Acme;MDL:LaserJet;")
	require.NoError(t, sender.Send(wire.CmdGetDeviceID, wire.StatusOK, data, testTimeout))

	buf := make([]byte, 64)
	msg, err := receiver.Receive(buf, testTimeout)
	require.NoError(t, err)
	assert.Equal(t, wire.CmdGetDeviceID, msg.Command)
	assert.Equal(t, wire.StatusOK, msg.Status)
	assert.Equal(t, data, msg.Data)
}

func TestSendEmptyData(t *testing.T) {
	a, b := socketPair(t)
	defer a.Close()
	defer b.Close()

	require.NoError(t, New(a, Config{}).Send(wire.CmdSoftReset, wire.StatusNone, nil, testTimeout))

	msg, err := New(b, Config{}).Receive(nil, testTimeout)
	require.NoError(t, err)
	assert.Equal(t, wire.CmdSoftReset, msg.Command)
	assert.Equal(t, wire.StatusNone, msg.Status)
	assert.Empty(t, msg.Data)
}

func TestSendValidatesBeforeIO(t *testing.T) {
	d := &countingDescriptor{}
	ch := New(d, Config{})

	err := ch.Send(wire.CmdNone, wire.StatusNone, nil, testTimeout)
	assert.ErrorIs(t, err, wire.ErrInvalidCommand)

	err = ch.Send(wire.CmdMax, wire.StatusNone, nil, testTimeout)
	assert.ErrorIs(t, err, wire.ErrInvalidCommand)

	err = ch.Send(wire.CmdGetDeviceID, wire.StatusOK, make([]byte, wire.MaxData+1), testTimeout)
	assert.ErrorIs(t, err, wire.ErrInvalidLength)

	assert.Zero(t, d.calls(), "validation failures must not touch the descriptor")
}

func TestSendTimeoutWhenNotWritable(t *testing.T) {
	d := &countingDescriptor{}
	ch := New(d, Config{})

	err := ch.Send(wire.CmdGetState, wire.StatusNone, nil, 0)
	assert.ErrorIs(t, err, wire.ErrTimeout)
	assert.Equal(t, wire.StatusTimeout, wire.StatusOf(err))
	assert.Equal(t, 1, d.waits)
	assert.Zero(t, d.writes)
}

func TestReceiveTimeoutZeroReturnsImmediately(t *testing.T) {
	ch, _ := newRawPair(t)

	start := time.Now()
	msg, err := ch.Receive(make([]byte, 16), 0)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, wire.ErrTimeout)
	assert.Equal(t, wire.CmdNone, msg.Command)
	assert.Equal(t, wire.StatusTimeout, msg.Status)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestReceiveBoundedTimeout(t *testing.T) {
	ch, _ := newRawPair(t)

	start := time.Now()
	_, err := ch.Receive(make([]byte, 16), 50*time.Millisecond)
	assert.ErrorIs(t, err, wire.ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReceiveStaleReadinessPollOnce(t *testing.T) {
	d := &staleDescriptor{}
	ch := New(d, Config{})

	msg, err := ch.Receive(make([]byte, 16), 0)
	assert.ErrorIs(t, err, wire.ErrTimeout)
	assert.Equal(t, wire.CmdNone, msg.Command)
	assert.Equal(t, wire.StatusTimeout, msg.Status)
	assert.Equal(t, []time.Duration{0}, d.waits)
	assert.Equal(t, 1, d.reads)
}

func TestReceiveStaleReadinessBounded(t *testing.T) {
	d := &staleDescriptor{}
	ch := New(d, Config{})

	start := time.Now()
	_, err := ch.Receive(make([]byte, 16), 30*time.Millisecond)
	assert.ErrorIs(t, err, wire.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
	require.NotEmpty(t, d.waits)
	for i, w := range d.waits {
		if w < 0 {
			t.Fatalf("wait %d of %d has no deadline: %v", i, len(d.waits), w)
		}
	}
}

func TestReceiveTooBigLeavesBufferUntouched(t *testing.T) {
	ch, peer := newRawPair(t)
	require.NoError(t, fdio.WriteAll(peer, rawFrame(wire.CmdGetDeviceID, wire.StatusOK, []byte("0123456789"))))

	buf := []byte("keep")
	msg, err := ch.Receive(buf, testTimeout)
	assert.ErrorIs(t, err, wire.ErrTooBig)
	assert.Equal(t, wire.CmdNone, msg.Command)
	assert.Equal(t, wire.StatusTooBig, msg.Status)
	assert.Equal(t, "keep", string(buf))
}

func TestReceiveDeclaredLengthExceedsRead(t *testing.T) {
	ch, peer := newRawPair(t)

	frame := rawFrame(wire.CmdGetDeviceID, wire.StatusOK, []byte("abc"))
	frame[3] = 0x20
	require.NoError(t, fdio.WriteAll(peer, frame))

	msg, err := ch.Receive(make([]byte, 64), testTimeout)
	assert.ErrorIs(t, err, wire.ErrTooBig)
	assert.Equal(t, wire.StatusTooBig, msg.Status)
}

func TestReceiveShortFrame(t *testing.T) {
	ch, peer := newRawPair(t)
	require.NoError(t, fdio.WriteAll(peer, []byte{byte(wire.CmdGetState), 0x01}))

	msg, err := ch.Receive(make([]byte, 16), testTimeout)
	assert.ErrorIs(t, err, wire.ErrBadMessage)
	assert.Equal(t, wire.StatusBadMessage, msg.Status)
	assert.Equal(t, wire.CmdNone, msg.Command)
}

func TestReceiveInvalidCommand(t *testing.T) {
	ch, peer := newRawPair(t)
	require.NoError(t, fdio.WriteAll(peer, rawFrame(wire.Command(0x42), wire.StatusOK, nil)))

	msg, err := ch.Receive(make([]byte, 16), testTimeout)
	assert.ErrorIs(t, err, wire.ErrBadMessage)
	assert.ErrorIs(t, err, wire.ErrInvalidCommand)
	assert.Equal(t, wire.StatusBadMessage, msg.Status)
}

func TestReceivePeerClosed(t *testing.T) {
	client, peer := socketPair(t)
	defer client.Close()
	require.NoError(t, peer.Close())

	msg, err := New(client, Config{}).Receive(make([]byte, 16), testTimeout)
	assert.ErrorIs(t, err, wire.ErrBadMessage)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, wire.StatusBadMessage, msg.Status)
}

func TestReceivePassesRemoteStatusThrough(t *testing.T) {
	ch, peer := newRawPair(t)
	require.NoError(t, fdio.WriteAll(peer, rawFrame(wire.CmdGetState, wire.StatusNotImplemented, nil)))

	msg, err := ch.Receive(make([]byte, 16), testTimeout)
	require.NoError(t, err, "a non-ok status is a successful receive")
	assert.Equal(t, wire.CmdGetState, msg.Command)
	assert.Equal(t, wire.StatusNotImplemented, msg.Status)
}

func TestChannelCapture(t *testing.T) {
	a, b := socketPair(t)
	defer a.Close()
	defer b.Close()

	capture := &captureLogger{}
	sender := New(a, Config{ProtocolLogger: capture})
	require.NotEmpty(t, sender.ConnectionID())

	require.NoError(t, sender.Send(wire.CmdGetState, wire.StatusNone, nil, testTimeout))
	_, err := sender.Receive(make([]byte, 4), 0)
	require.ErrorIs(t, err, wire.ErrTimeout)

	events := capture.Events()
	require.Len(t, events, 3)

	assert.Equal(t, log.LayerTransport, events[0].Layer)
	require.NotNil(t, events[0].Frame)
	assert.Equal(t, wire.HeaderSize, events[0].Frame.Size)
	assert.Equal(t, int(a), events[0].FD)
	assert.Equal(t, log.RoleFilter, events[0].LocalRole)

	assert.Equal(t, log.LayerWire, events[1].Layer)
	require.NotNil(t, events[1].Message)
	assert.Equal(t, wire.CmdGetState, events[1].Message.Command)

	assert.Equal(t, log.CategoryError, events[2].Category)
	require.NotNil(t, events[2].Error)
	assert.Equal(t, wire.StatusTimeout, events[2].Error.Status)

	for _, e := range events {
		assert.Equal(t, sender.ConnectionID(), e.ConnectionID)
	}
}

func TestChannelWithoutCapture(t *testing.T) {
	ch := New(&countingDescriptor{}, Config{})
	assert.Empty(t, ch.ConnectionID())
}
