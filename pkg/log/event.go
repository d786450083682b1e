package log

import (
	"time"

	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the channel instance (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow relative to the local process.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this process is the filter or the backend.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// FD is the descriptor the event was captured on.
	FD int `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire/client layer
	BackChannel *BackChannelEvent `cbor:"12,keyasint,omitempty"` // Raw back-channel bytes
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the descriptor layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the message layer (decoded header and data).
	LayerWire Layer = 1
	// LayerClient is the request layer (round trips and walks).
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a side-channel message.
	CategoryMessage Category = 0
	// CategoryBackChannel indicates raw back-channel data.
	CategoryBackChannel Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryBackChannel:
		return "BACKCHANNEL"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which end of the channel the local process is.
type Role uint8

const (
	// RoleFilter indicates a filter, driver or port monitor.
	RoleFilter Role = 0
	// RoleBackend indicates the backend that owns the device.
	RoleBackend Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleFilter:
		return "FILTER"
	case RoleBackend:
		return "BACKEND"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including the 4-byte header).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded side-channel message.
type MessageEvent struct {
	// Command is the message command code.
	Command wire.Command `cbor:"1,keyasint"`

	// Status is the message status code.
	Status wire.Status `cbor:"2,keyasint"`

	// DataLen is the length of the message data.
	DataLen int `cbor:"3,keyasint"`

	// OID is the object identifier for SNMP commands, when present.
	OID string `cbor:"4,keyasint,omitempty"`

	// Value is the SNMP value (client layer only, may be truncated).
	Value []byte `cbor:"5,keyasint,omitempty"`

	// RoundTrip is the duration from request send to response receipt
	// (client layer only). Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"6,keyasint,omitempty"`
}

// BackChannelEvent captures raw data moved over the back channel.
type BackChannelEvent struct {
	// Size is the number of bytes transferred.
	Size int `cbor:"1,keyasint"`

	// Data is the transferred bytes (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Status is the wire status the error maps to.
	Status wire.Status `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}

// MaxCaptureDataSize is the maximum number of data bytes kept per event.
// Larger payloads are truncated to avoid excessive memory use.
const MaxCaptureDataSize = 4096

// TruncateData returns data limited to MaxCaptureDataSize and whether it
// was cut.
func TruncateData(data []byte) ([]byte, bool) {
	if len(data) > MaxCaptureDataSize {
		return data[:MaxCaptureDataSize], true
	}
	return data, false
}
