package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Capture records are CBOR maps keyed by small integers (see the keyasint
// tags on Event and its payload types), so a record for a 4-byte frame stays
// a few dozen bytes. Top-level keys 1-7 are the envelope; exactly one of
// 10 (frame), 11 (message), 12 (back channel) or 14 (error) carries the
// payload. 13 is unassigned.
//
// Timestamps are RFC 3339 strings with nanoseconds under CBOR tag 0, which
// keeps per-frame ordering within a capture exact. Maps are written in
// canonical key order so identical events encode to identical bytes.
var (
	captureEnc = mustEncMode(cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
		TimeTag:       cbor.EncTagRequired,
	})

	// Readers reject repeated keys: a record with two payloads is corrupt.
	captureDec = mustDecMode(cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	mode, err := opts.EncMode()
	if err != nil {
		panic("log: capture encoder options: " + err.Error())
	}
	return mode
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	mode, err := opts.DecMode()
	if err != nil {
		panic("log: capture decoder options: " + err.Error())
	}
	return mode
}

// EncodeEvent encodes one capture record.
func EncodeEvent(event Event) ([]byte, error) {
	return captureEnc.Marshal(event)
}

// DecodeEvent decodes one capture record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := captureDec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an encoder that appends capture records to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return captureEnc.NewEncoder(w)
}

// NewDecoder returns a decoder that reads consecutive capture records from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return captureDec.NewDecoder(r)
}
