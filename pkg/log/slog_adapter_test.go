package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/wire"
)

func newTextAdapter(level slog.Level) (*SlogAdapter, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))
	return NewSlogAdapter(logger), &buf
}

func TestSlogAdapterMessage(t *testing.T) {
	adapter, buf := newTextAdapter(slog.LevelDebug)

	rt := 3 * time.Millisecond
	adapter.Log(Event{
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerClient,
		Category:     CategoryMessage,
		Message: &MessageEvent{
			Command:   wire.CmdSNMPGet,
			Status:    wire.StatusOK,
			DataLen:   12,
			OID:       "1.3.6.1.2.1.1.1.0",
			RoundTrip: &rt,
		},
	})

	out := buf.String()
	for _, want := range []string{"msg=sidechannel", "conn_id=conn-1", "command=SNMP_GET", "status=OK", "data_len=12", "oid=1.3.6.1.2.1.1.1.0", "round_trip=3ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterError(t *testing.T) {
	adapter, buf := newTextAdapter(slog.LevelDebug)

	adapter.Log(Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerWire, Message: "boom", Status: wire.StatusTimeout, Context: "receive"},
	})

	out := buf.String()
	for _, want := range []string{"error_msg=boom", "error_status=TIMEOUT", "error_context=receive"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	adapter, buf := newTextAdapter(slog.LevelInfo)

	adapter.Log(Event{Frame: &FrameEvent{Size: 4}})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %s", buf.String())
	}
}
