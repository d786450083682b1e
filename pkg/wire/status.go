package wire

import "strings"

// Status represents the outcome of a side-channel command.
type Status uint8

const (
	// StatusNone means no status has been set yet. Only requests carry it.
	StatusNone Status = 0

	// StatusOK indicates the command completed successfully.
	StatusOK Status = 1

	// StatusIOError indicates an I/O error on the descriptor or device.
	StatusIOError Status = 2

	// StatusTimeout indicates the operation did not complete in time.
	StatusTimeout Status = 3

	// StatusNoResponse indicates the device did not respond.
	StatusNoResponse Status = 4

	// StatusBadMessage indicates a malformed or mismatched message.
	StatusBadMessage Status = 5

	// StatusTooBig indicates the response does not fit the buffer.
	StatusTooBig Status = 6

	// StatusNotImplemented indicates the backend does not support the command.
	StatusNotImplemented Status = 7

	// StatusBusy indicates the backend is busy; try again later.
	StatusBusy Status = 8
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusOK:
		return "OK"
	case StatusIOError:
		return "IO_ERROR"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusNoResponse:
		return "NO_RESPONSE"
	case StatusBadMessage:
		return "BAD_MESSAGE"
	case StatusTooBig:
		return "TOO_BIG"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case StatusBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusOK
}

// IsError returns true if the status is neither OK nor the none sentinel.
func (s Status) IsError() bool {
	return s != StatusOK && s != StatusNone
}

// ParseStatus parses a status name as printed by String.
func ParseStatus(s string) (Status, bool) {
	name := normalizeName(s)
	for st := StatusNone; st <= StatusBusy; st++ {
		if st.String() == name {
			return st, true
		}
	}
	return StatusNone, false
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}
