package log

import (
	"time"

	"github.com/google/uuid"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Recorder stamps capture events with the identity of one channel and
// forwards them to a Logger. A nil Recorder, or one without a Logger,
// records nothing.
type Recorder struct {
	logger Logger
	connID string
	role   Role
	fd     int
	now    func() time.Time
}

// NewRecorder creates a Recorder with a fresh connection ID.
func NewRecorder(logger Logger, role Role, fd int) *Recorder {
	return &Recorder{
		logger: logger,
		connID: uuid.New().String(),
		role:   role,
		fd:     fd,
		now:    time.Now,
	}
}

// Enabled returns true if events are forwarded anywhere.
func (r *Recorder) Enabled() bool {
	return r != nil && r.logger != nil
}

// ConnectionID returns the channel's connection ID.
func (r *Recorder) ConnectionID() string {
	if r == nil {
		return ""
	}
	return r.connID
}

func (r *Recorder) event(dir Direction, layer Layer, cat Category) Event {
	return Event{
		Timestamp:    r.now(),
		ConnectionID: r.connID,
		Direction:    dir,
		Layer:        layer,
		Category:     cat,
		LocalRole:    r.role,
		FD:           r.fd,
	}
}

// Frame records the raw bytes of one side-channel frame.
func (r *Recorder) Frame(dir Direction, frame []byte) {
	if !r.Enabled() {
		return
	}
	data, truncated := TruncateData(frame)
	e := r.event(dir, LayerTransport, CategoryMessage)
	e.Frame = &FrameEvent{
		Size:      len(frame),
		Data:      append([]byte(nil), data...),
		Truncated: truncated,
	}
	r.logger.Log(e)
}

// Message records a decoded message at the given layer.
func (r *Recorder) Message(dir Direction, layer Layer, msg MessageEvent) {
	if !r.Enabled() {
		return
	}
	if len(msg.Value) > 0 {
		v, _ := TruncateData(msg.Value)
		msg.Value = append([]byte(nil), v...)
	}
	e := r.event(dir, layer, CategoryMessage)
	e.Message = &msg
	r.logger.Log(e)
}

// Wire records a decoded side-channel message at the wire layer.
func (r *Recorder) Wire(dir Direction, m wire.Message) {
	if !r.Enabled() {
		return
	}
	r.Message(dir, LayerWire, MessageEvent{
		Command: m.Command,
		Status:  m.Status,
		DataLen: len(m.Data),
	})
}

// BackChannel records raw back-channel bytes.
func (r *Recorder) BackChannel(dir Direction, data []byte) {
	if !r.Enabled() {
		return
	}
	kept, truncated := TruncateData(data)
	e := r.event(dir, LayerTransport, CategoryBackChannel)
	e.BackChannel = &BackChannelEvent{
		Size:      len(data),
		Data:      append([]byte(nil), kept...),
		Truncated: truncated,
	}
	r.logger.Log(e)
}

// Error records a failure and the operation it interrupted.
func (r *Recorder) Error(dir Direction, layer Layer, err error, context string) {
	if !r.Enabled() || err == nil {
		return
	}
	e := r.event(dir, layer, CategoryError)
	e.Error = &ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Status:  wire.StatusOf(err),
		Context: context,
	}
	r.logger.Log(e)
}
