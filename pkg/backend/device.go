package backend

import (
	"context"
	"sync"

	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Device answers side-channel requests from static device facts.
//
// Fields may be changed while serving through the setter methods.
type Device struct {
	// DeviceID is the IEEE-1284 device ID. Empty means not implemented.
	DeviceID string

	// State is reported for CmdGetState.
	State wire.State

	// Bidi reports whether the connection is bidirectional.
	Bidi bool

	// Connected reports whether the device is reachable.
	Connected bool

	// Community is the SNMP community name. Empty means not implemented.
	Community string

	// MIB answers SNMP requests. If nil, SNMP is not implemented.
	MIB *MIB

	// Reset is called for CmdSoftReset. If nil, the request succeeds.
	Reset func(ctx context.Context) error

	// Drain is called for CmdDrainOutput. If nil, the request succeeds.
	Drain func(ctx context.Context) error

	mu sync.RWMutex
}

// SetState updates the reported device state.
func (d *Device) SetState(s wire.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.State = s
}

// SetConnected updates the reported connection state.
func (d *Device) SetConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Connected = connected
}

// Mux builds a Mux answering every command the device supports.
func (d *Device) Mux() *Mux {
	m := NewMux()

	m.HandleFunc(wire.CmdSoftReset, func(ctx context.Context, _ Request) Response {
		return d.run(ctx, d.Reset)
	})
	m.HandleFunc(wire.CmdDrainOutput, func(ctx context.Context, _ Request) Response {
		return d.run(ctx, d.Drain)
	})
	m.HandleFunc(wire.CmdGetBidi, func(context.Context, Request) Response {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.Bidi {
			return OK([]byte{wire.BidiSupported})
		}
		return OK([]byte{wire.BidiNotSupported})
	})
	m.HandleFunc(wire.CmdGetState, func(context.Context, Request) Response {
		d.mu.RLock()
		defer d.mu.RUnlock()
		return OK([]byte{byte(d.State)})
	})
	m.HandleFunc(wire.CmdGetConnected, func(context.Context, Request) Response {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.Connected {
			return OK([]byte{wire.Connected})
		}
		return OK([]byte{wire.NotConnected})
	})

	if d.DeviceID != "" {
		m.HandleFunc(wire.CmdGetDeviceID, func(context.Context, Request) Response {
			return OK([]byte(d.DeviceID))
		})
	}
	if d.Community != "" {
		m.HandleFunc(wire.CmdSNMPCommunity, func(context.Context, Request) Response {
			return OK([]byte(d.Community))
		})
	}
	if d.MIB != nil {
		m.HandleFunc(wire.CmdSNMPGet, d.MIB.HandleGet)
		m.HandleFunc(wire.CmdSNMPGetNext, d.MIB.HandleGetNext)
	}

	return m
}

func (d *Device) run(ctx context.Context, fn func(context.Context) error) Response {
	if fn == nil {
		return OK(nil)
	}
	if err := fn(ctx); err != nil {
		return Fail(wire.StatusIOError)
	}
	return OK(nil)
}
