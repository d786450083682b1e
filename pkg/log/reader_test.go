package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/wire"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sclog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test capture: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, e)
	}
}

func testEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, ConnectionID: "conn-1", Direction: DirectionOut, Layer: LayerWire, Category: CategoryMessage, LocalRole: RoleFilter,
			Message: &MessageEvent{Command: wire.CmdGetState, Status: wire.StatusNone}},
		{Timestamp: base.Add(time.Second), ConnectionID: "conn-1", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage, LocalRole: RoleFilter,
			Message: &MessageEvent{Command: wire.CmdGetState, Status: wire.StatusOK, DataLen: 1}},
		{Timestamp: base.Add(2 * time.Second), ConnectionID: "conn-2", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryBackChannel, LocalRole: RoleBackend,
			BackChannel: &BackChannelEvent{Size: 2}},
		{Timestamp: base.Add(3 * time.Second), ConnectionID: "conn-2", Direction: DirectionIn, Layer: LayerWire, Category: CategoryError, LocalRole: RoleBackend,
			Error: &ErrorEventData{Layer: LayerWire, Message: "bad message"}},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, testEvents(base))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 4 {
		t.Fatalf("got %d events, want 4", len(read))
	}
	if read[0].Message == nil || read[0].Message.Command != wire.CmdGetState {
		t.Errorf("first event: %+v", read[0])
	}
	if read[3].Error == nil {
		t.Errorf("last event has no error payload")
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, testEvents(base))

	in := DirectionIn
	wireLayer := LayerWire
	errCat := CategoryError
	backend := RoleBackend
	state := wire.CmdGetState
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"connection", Filter{ConnectionID: "conn-2"}, 2},
		{"direction", Filter{Direction: &in}, 3},
		{"layer", Filter{Layer: &wireLayer}, 3},
		{"category", Filter{Category: &errCat}, 1},
		{"role", Filter{Role: &backend}, 2},
		{"command", Filter{Command: &state}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{ConnectionID: "conn-1", Direction: &in}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.sclog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReaderEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)
	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next on empty file: got %v, want io.EOF", err)
	}
}
