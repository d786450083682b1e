package wire

import "strings"

// State is the device state bitfield returned by CmdGetState.
type State uint8

const (
	// StateOffline means the device is offline. It is the zero value.
	StateOffline State = 0x00
	// StateOnline means the device is online.
	StateOnline State = 0x01
	// StateBusy means the device is busy.
	StateBusy State = 0x02
	// StateError means the device has an error condition.
	StateError State = 0x04
	// StateMediaLow means paper is low.
	StateMediaLow State = 0x10
	// StateMediaEmpty means paper is out or jammed.
	StateMediaEmpty State = 0x20
	// StateMarkerLow means toner or ink is low.
	StateMarkerLow State = 0x40
	// StateMarkerEmpty means toner or ink is out.
	StateMarkerEmpty State = 0x80
)

var stateNames = []struct {
	bit  State
	name string
}{
	{StateOnline, "ONLINE"},
	{StateBusy, "BUSY"},
	{StateError, "ERROR"},
	{StateMediaLow, "MEDIA_LOW"},
	{StateMediaEmpty, "MEDIA_EMPTY"},
	{StateMarkerLow, "MARKER_LOW"},
	{StateMarkerEmpty, "MARKER_EMPTY"},
}

// Has returns true if all bits of flag are set.
func (s State) Has(flag State) bool {
	return s&flag == flag
}

// String returns the set flags joined by '|', or OFFLINE when none are set.
func (s State) String() string {
	if s == StateOffline {
		return "OFFLINE"
	}
	var parts []string
	for _, n := range stateNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// ParseState parses a '|' or ',' separated list of flag names.
func ParseState(s string) (State, bool) {
	var st State
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	for _, f := range fields {
		name := normalizeName(f)
		if name == "OFFLINE" {
			continue
		}
		found := false
		for _, n := range stateNames {
			if n.name == name {
				st |= n.bit
				found = true
				break
			}
		}
		if !found {
			return StateOffline, false
		}
	}
	return st, true
}

// Single-byte payload values for CmdGetBidi and CmdGetConnected.
const (
	BidiNotSupported byte = 0
	BidiSupported    byte = 1

	NotConnected byte = 0
	Connected    byte = 1
)
