package wire

import (
	"errors"
	"fmt"
)

// Side-channel errors. Each maps to a Status via StatusOf.
var (
	// ErrInvalidCommand indicates a command code outside the valid range.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidLength indicates a data length the header cannot carry.
	ErrInvalidLength = errors.New("invalid data length")

	// ErrInvalidArgument indicates a malformed caller argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout indicates the descriptor did not become ready in time.
	ErrTimeout = errors.New("timeout")

	// ErrBadMessage indicates a structurally invalid or mismatched message.
	ErrBadMessage = errors.New("bad message")

	// ErrTooBig indicates data that does not fit the receiving buffer.
	ErrTooBig = errors.New("message too big")

	// ErrIO indicates a hard I/O failure on the descriptor.
	ErrIO = errors.New("i/o error")
)

// StatusError reports a reply that arrived intact but carried a
// non-success status.
type StatusError struct {
	Command Command
	Status  Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: remote status %s", e.Command, e.Status)
}

// StatusOf maps an error to the wire status that reports it.
// A nil error maps to StatusOK. Validation errors map to StatusBadMessage.
func StatusOf(err error) Status {
	var se *StatusError
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &se):
		return se.Status
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrTooBig):
		return StatusTooBig
	case errors.Is(err, ErrIO):
		return StatusIOError
	default:
		return StatusBadMessage
	}
}
