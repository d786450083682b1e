package fdio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/wire"
	"golang.org/x/sys/unix"
)

// ReadOnce issues one read of up to len(p) bytes.
//
// Interruptions are retried. A read that would block waits for readability
// again, bounded by timeout: zero reports wire.ErrTimeout without another
// poll, negative waits without limit. Zero bytes read means the peer closed
// its end and is reported as io.EOF. Any other failure wraps wire.ErrIO.
func ReadOnce(d Descriptor, p []byte, timeout time.Duration) (int, error) {
	start := time.Now()
	for {
		n, err := d.Read(p)
		if err == nil {
			if n == 0 && len(p) > 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if errors.Is(err, unix.EAGAIN) {
			left := Remaining(timeout, start)
			if left == 0 {
				return 0, fmt.Errorf("%w: read would block after %v", wire.ErrTimeout, timeout)
			}
			if err := WaitReady(d, Read, left); err != nil {
				return 0, err
			}
			continue
		}
		return 0, fmt.Errorf("%w: read: %w", wire.ErrIO, err)
	}
}

// WriteAll writes every byte of p, advancing past partial writes.
//
// Interruptions are retried. Any other failure aborts the loop and wraps
// wire.ErrIO; how much was written before the failure is not reported.
// There is no deadline once WriteAll has been entered.
func WriteAll(d Descriptor, p []byte) error {
	for len(p) > 0 {
		n, err := d.Write(p)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if err := waitAgain(d, Write); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("%w: write: %w", wire.ErrIO, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %w", wire.ErrIO, io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}

// Remaining returns what is left of timeout since start. Negative timeouts
// stay negative; a positive timeout that has run out becomes zero.
func Remaining(timeout time.Duration, start time.Time) time.Duration {
	if timeout <= 0 {
		return timeout
	}
	left := timeout - time.Since(start)
	if left <= 0 {
		return 0
	}
	return left
}

// waitAgain blocks on a descriptor that reported EAGAIN during a write.
func waitAgain(d Descriptor, dir Direction) error {
	r, err := d.Wait(dir, Forever)
	if r == Failed {
		if err == nil {
			err = fmt.Errorf("%w: wait %s failed", wire.ErrIO, dir)
		}
		return err
	}
	return nil
}

// WaitReady waits for dir and converts the outcome to an error:
// nil when ready, wire.ErrTimeout on timeout, wire.ErrIO on failure.
func WaitReady(d Descriptor, dir Direction, timeout time.Duration) error {
	r, err := d.Wait(dir, timeout)
	switch r {
	case Ready:
		return nil
	case TimedOut:
		return fmt.Errorf("%w: waiting for %s after %v", wire.ErrTimeout, dir, timeout)
	default:
		if err == nil {
			err = fmt.Errorf("%w: wait %s failed", wire.ErrIO, dir)
		}
		return err
	}
}
