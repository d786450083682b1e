package backend

import (
	"context"
	"sync"

	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Request is one decoded filter request.
// Data is only valid for the duration of the handler call.
type Request struct {
	Command wire.Command
	Data    []byte
}

// Response is the reply sent back with the request's command.
type Response struct {
	Status wire.Status
	Data   []byte
}

// OK returns a successful response carrying data.
func OK(data []byte) Response {
	return Response{Status: wire.StatusOK, Data: data}
}

// Fail returns a data-less response with the given status.
func Fail(status wire.Status) Response {
	return Response{Status: status}
}

// Handler answers side-channel requests.
type Handler interface {
	ServeSideChannel(ctx context.Context, req Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) Response

// ServeSideChannel calls f(ctx, req).
func (f HandlerFunc) ServeSideChannel(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Mux dispatches requests to per-command handlers.
// It is safe for concurrent use.
type Mux struct {
	mu       sync.RWMutex
	handlers map[wire.Command]Handler
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[wire.Command]Handler)}
}

// Handle registers h for cmd, replacing any previous handler.
func (m *Mux) Handle(cmd wire.Command, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[cmd] = h
}

// HandleFunc registers f for cmd.
func (m *Mux) HandleFunc(cmd wire.Command, f func(ctx context.Context, req Request) Response) {
	m.Handle(cmd, HandlerFunc(f))
}

// Commands returns the commands with a registered handler, in code order.
func (m *Mux) Commands() []wire.Command {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []wire.Command
	for c := wire.CmdSoftReset; c < wire.CmdMax; c++ {
		if _, ok := m.handlers[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ServeSideChannel routes req to its handler.
func (m *Mux) ServeSideChannel(ctx context.Context, req Request) Response {
	m.mu.RLock()
	h, ok := m.handlers[req.Command]
	m.mu.RUnlock()

	if !ok {
		return Fail(wire.StatusNotImplemented)
	}
	return h.ServeSideChannel(ctx, req)
}

var _ Handler = (*Mux)(nil)
