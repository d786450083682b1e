package fdio

import (
	"errors"
	"fmt"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/wire"
	"golang.org/x/sys/unix"
)

// Well-known descriptor numbers inherited by filters from the spooler.
const (
	// BackChannelFD is the conventional back-channel descriptor.
	BackChannelFD = 3

	// SideChannelFD is the conventional side-channel descriptor.
	SideChannelFD = 4
)

// Forever disables the deadline of a wait.
const Forever time.Duration = -1

// Direction selects which readiness a wait is for.
type Direction uint8

const (
	// Read waits until the descriptor is readable (or at end of input).
	Read Direction = iota
	// Write waits until the descriptor is writable.
	Write
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Readiness is the outcome of a wait.
type Readiness uint8

const (
	// Ready means the descriptor can be used without blocking.
	Ready Readiness = iota
	// TimedOut means the timeout elapsed first.
	TimedOut
	// Failed means the descriptor is in an error state.
	Failed
)

// String returns the readiness name.
func (r Readiness) String() string {
	switch r {
	case Ready:
		return "READY"
	case TimedOut:
		return "TIMED_OUT"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Descriptor is the system-call surface the channels run on.
// Implemented by FD.
type Descriptor interface {
	// Wait blocks until the descriptor is ready in dir or timeout elapses.
	// A non-nil error is returned only together with Failed.
	Wait(dir Direction, timeout time.Duration) (Readiness, error)

	// Read issues exactly one underlying read.
	// Errors are returned unwrapped so callers can test for EINTR/EAGAIN.
	Read(p []byte) (int, error)

	// Write issues exactly one underlying write.
	// Errors are returned unwrapped so callers can test for EINTR/EAGAIN.
	Write(p []byte) (int, error)
}

// FD is a raw file descriptor number.
type FD int

// Wait implements Descriptor using poll(2).
func (fd FD) Wait(dir Direction, timeout time.Duration) (Readiness, error) {
	var events int16 = unix.POLLIN
	if dir == Write {
		events = unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		n, err := unix.Poll(fds, pollMillis(timeout, deadline))
		if err != nil {
			if isTransient(err) {
				continue
			}
			return Failed, fmt.Errorf("%w: poll fd %d: %w", wire.ErrIO, fd, err)
		}
		if n == 0 {
			return TimedOut, nil
		}
		return readiness(fd, dir, fds[0].Revents)
	}
}

func readiness(fd FD, dir Direction, revents int16) (Readiness, error) {
	switch {
	case revents&unix.POLLNVAL != 0:
		return Failed, fmt.Errorf("%w: fd %d is not open", wire.ErrIO, fd)
	case dir == Read && revents&(unix.POLLIN|unix.POLLHUP) != 0:
		// POLLHUP without POLLIN still lets the next read report EOF.
		return Ready, nil
	case dir == Write && revents&unix.POLLOUT != 0:
		return Ready, nil
	case revents&(unix.POLLERR|unix.POLLHUP) != 0:
		return Failed, fmt.Errorf("%w: fd %d hung up or errored (revents %#x)", wire.ErrIO, fd, revents)
	default:
		return Ready, nil
	}
}

// pollMillis converts the remaining time to a poll(2) timeout.
// Positive sub-millisecond remainders round up so they still block.
func pollMillis(timeout time.Duration, deadline time.Time) int {
	if timeout < 0 {
		return -1
	}
	if timeout == 0 {
		return 0
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0
	}
	ms := (remaining + time.Millisecond - 1) / time.Millisecond
	return int(ms)
}

// Read implements Descriptor with a single read(2).
func (fd FD) Read(p []byte) (int, error) {
	n, err := unix.Read(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write implements Descriptor with a single write(2).
func (fd FD) Write(p []byte) (int, error) {
	n, err := unix.Write(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Close closes the descriptor.
func (fd FD) Close() error {
	return unix.Close(int(fd))
}

func isTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}

// Compile-time interface satisfaction check.
var _ Descriptor = FD(0)
