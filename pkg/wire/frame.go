package wire

import (
	"encoding/binary"
	"fmt"
)

// Framing constants.
const (
	// HeaderSize is the size of the fixed message header in bytes.
	HeaderSize = 4

	// MaxData is the largest data length the header can describe.
	MaxData = 65535

	// MaxFrame is the largest possible encoded message.
	MaxFrame = HeaderSize + MaxData
)

// Header is the fixed 4-byte message header.
type Header struct {
	Command Command
	Status  Status
	Length  uint16
}

// Message is one decoded side-channel message.
type Message struct {
	Command Command
	Status  Status
	Data    []byte
}

// Header returns the header that encodes m.
func (m Message) Header() Header {
	return Header{Command: m.Command, Status: m.Status, Length: uint16(len(m.Data))}
}

// Encode encodes m into a new buffer.
func (m Message) Encode() ([]byte, error) {
	return EncodeFrame(m.Command, m.Status, m.Data)
}

// EncodeHeader writes h into the first HeaderSize bytes of b.
func EncodeHeader(b []byte, h Header) {
	b[0] = byte(h.Command)
	b[1] = byte(h.Status)
	binary.BigEndian.PutUint16(b[2:4], h.Length)
}

// DecodeHeader decodes the fixed header at the start of b.
// The command code is validated; the status code is passed through.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d byte(s) is shorter than the header", ErrBadMessage, len(b))
	}
	h := Header{
		Command: Command(b[0]),
		Status:  Status(b[1]),
		Length:  binary.BigEndian.Uint16(b[2:4]),
	}
	if !h.Command.IsValid() {
		return Header{}, fmt.Errorf("%w: %w %d", ErrBadMessage, ErrInvalidCommand, b[0])
	}
	return h, nil
}

// EncodeFrame encodes a message into a buffer of exactly len(data)+HeaderSize bytes.
func EncodeFrame(cmd Command, status Status, data []byte) ([]byte, error) {
	if !cmd.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCommand, cmd)
	}
	if len(data) > MaxData {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidLength, len(data), MaxData)
	}

	buf := make([]byte, HeaderSize+len(data))
	EncodeHeader(buf, Header{Command: cmd, Status: status, Length: uint16(len(data))})
	copy(buf[HeaderSize:], data)
	return buf, nil
}

// DecodeFrameInto decodes the received bytes in frame and copies the data
// into dst. frame must hold exactly what was read from the descriptor.
//
// The declared length must fit both dst and the bytes that follow the
// header; otherwise ErrTooBig is returned and dst is left untouched.
func DecodeFrameInto(frame, dst []byte) (Header, error) {
	h, err := DecodeHeader(frame)
	if err != nil {
		return Header{}, err
	}

	n := int(h.Length)
	if n > len(dst) {
		return Header{}, fmt.Errorf("%w: %d byte(s) declared, buffer holds %d", ErrTooBig, n, len(dst))
	}
	if n > len(frame)-HeaderSize {
		return Header{}, fmt.Errorf("%w: %d byte(s) declared, %d received", ErrTooBig, n, len(frame)-HeaderSize)
	}

	copy(dst, frame[HeaderSize:HeaderSize+n])
	return h, nil
}

// DecodeFrame decodes a message whose data may be at most capacity bytes.
// The returned Data is a copy and does not alias frame.
func DecodeFrame(frame []byte, capacity int) (Message, error) {
	if capacity < 0 {
		capacity = 0
	}
	h, err := DecodeHeader(frame)
	if err != nil {
		return Message{}, err
	}
	if int(h.Length) > capacity {
		return Message{}, fmt.Errorf("%w: %d byte(s) declared, capacity %d", ErrTooBig, h.Length, capacity)
	}

	data := make([]byte, h.Length)
	if _, err := DecodeFrameInto(frame, data); err != nil {
		return Message{}, err
	}
	return Message{Command: h.Command, Status: h.Status, Data: data}, nil
}
