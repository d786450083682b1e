package wire

// Command identifies a side-channel operation.
type Command uint8

const (
	// CmdNone is a local sentinel meaning "no command". It is never valid on
	// the wire.
	CmdNone Command = 0

	// CmdSoftReset does a soft reset of the device, discarding queued data.
	CmdSoftReset Command = 1

	// CmdDrainOutput waits until all pending output has been sent.
	CmdDrainOutput Command = 2

	// CmdGetBidi reports whether the connection is bidirectional.
	CmdGetBidi Command = 3

	// CmdGetDeviceID returns the IEEE-1284 device ID string.
	CmdGetDeviceID Command = 4

	// CmdGetState returns the device state bitfield.
	CmdGetState Command = 5

	// CmdSNMPGet queries a single OID value.
	CmdSNMPGet Command = 6

	// CmdSNMPGetNext queries the next OID after the given one.
	CmdSNMPGetNext Command = 7

	// CmdGetConnected reports whether the backend is connected to the device.
	CmdGetConnected Command = 8

	// CmdSNMPCommunity returns the SNMP community name used by the backend.
	CmdSNMPCommunity Command = 9

	// CmdMax is one past the last valid command.
	CmdMax Command = 10
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "NONE"
	case CmdSoftReset:
		return "SOFT_RESET"
	case CmdDrainOutput:
		return "DRAIN_OUTPUT"
	case CmdGetBidi:
		return "GET_BIDI"
	case CmdGetDeviceID:
		return "GET_DEVICE_ID"
	case CmdGetState:
		return "GET_STATE"
	case CmdSNMPGet:
		return "SNMP_GET"
	case CmdSNMPGetNext:
		return "SNMP_GET_NEXT"
	case CmdGetConnected:
		return "GET_CONNECTED"
	case CmdSNMPCommunity:
		return "SNMP_COMMUNITY"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the command may appear on the wire.
func (c Command) IsValid() bool {
	return c >= CmdSoftReset && c < CmdMax
}

// ParseCommand parses a command name as printed by String.
// Matching is case-insensitive and accepts '-' in place of '_'.
func ParseCommand(s string) (Command, bool) {
	name := normalizeName(s)
	for c := CmdSoftReset; c < CmdMax; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return CmdNone, false
}
