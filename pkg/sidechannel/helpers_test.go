package sidechannel

import (
	"sync"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/fdio"
	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
	"golang.org/x/sys/unix"
)

const testTimeout = 2 * time.Second

// socketPair returns both ends of a connected stream socket pair.
func socketPair(t *testing.T) (fdio.FD, fdio.FD) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fdio.FD(fds[0]), fdio.FD(fds[1])
}

// rawFrame builds a frame without validating the command.
func rawFrame(cmd wire.Command, status wire.Status, data []byte) []byte {
	b := make([]byte, wire.HeaderSize+len(data))
	wire.EncodeHeader(b, wire.Header{Command: cmd, Status: status, Length: uint16(len(data))})
	copy(b[wire.HeaderSize:], data)
	return b
}

// snmpReply builds an "oid\0value" reply payload.
func snmpReply(oid, value string) []byte {
	return append(append([]byte(oid), 0), value...)
}

// respondFunc returns the raw reply to a request, or nil to stay silent.
type respondFunc func(req wire.Message) []byte

// fakeBackend answers requests on one end of a socket pair.
type fakeBackend struct {
	mu       sync.Mutex
	requests []wire.Message
}

func (b *fakeBackend) Requests() []wire.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]wire.Message(nil), b.requests...)
}

// newTestChannel connects a Channel to a fake backend driven by respond.
func newTestChannel(t *testing.T, cfg Config, respond respondFunc) (*Channel, *fakeBackend) {
	t.Helper()
	client, peer := socketPair(t)
	backend := &fakeBackend{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		buf := make([]byte, wire.MaxFrame)
		for {
			n, err := fdio.ReadOnce(peer, buf, fdio.Forever)
			if err != nil {
				return
			}
			req, err := wire.DecodeFrame(buf[:n], wire.MaxData)
			if err != nil {
				return
			}
			backend.mu.Lock()
			backend.requests = append(backend.requests, req)
			backend.mu.Unlock()

			if reply := respond(req); reply != nil {
				if err := fdio.WriteAll(peer, reply); err != nil {
					return
				}
			}
		}
	}()

	t.Cleanup(func() {
		client.Close()
		<-done
		peer.Close()
	})

	return New(client, cfg), backend
}

// countingDescriptor records calls and is never ready.
type countingDescriptor struct {
	waits, reads, writes int
}

func (d *countingDescriptor) Wait(fdio.Direction, time.Duration) (fdio.Readiness, error) {
	d.waits++
	return fdio.TimedOut, nil
}

func (d *countingDescriptor) Read([]byte) (int, error) {
	d.reads++
	return 0, unix.EIO
}

func (d *countingDescriptor) Write(p []byte) (int, error) {
	d.writes++
	return len(p), nil
}

func (d *countingDescriptor) calls() int {
	return d.waits + d.reads + d.writes
}

// staleDescriptor always reports ready but every read would block.
type staleDescriptor struct {
	waits []time.Duration
	reads int
}

func (d *staleDescriptor) Wait(_ fdio.Direction, timeout time.Duration) (fdio.Readiness, error) {
	d.waits = append(d.waits, timeout)
	return fdio.Ready, nil
}

func (d *staleDescriptor) Read([]byte) (int, error) {
	d.reads++
	return 0, unix.EAGAIN
}

func (d *staleDescriptor) Write(p []byte) (int, error) {
	return len(p), nil
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) Events() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}
