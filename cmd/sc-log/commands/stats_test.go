package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

func TestStatsAggregation(t *testing.T) {
	stats := newStats()
	for _, e := range sampleEvents() {
		stats.add(e)
	}

	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	if stats.Commands[wire.CmdSNMPGet] != 2 {
		t.Errorf("Commands[SNMP_GET] = %d, want 2", stats.Commands[wire.CmdSNMPGet])
	}
	if stats.Statuses[wire.StatusOK] != 1 {
		t.Errorf("Statuses[OK] = %d, want 1", stats.Statuses[wire.StatusOK])
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.BackChannelBytes != 6 {
		t.Errorf("BackChannelBytes = %d, want 6", stats.BackChannelBytes)
	}
	if len(stats.Connections) != 2 {
		t.Fatalf("Connections = %d, want 2", len(stats.Connections))
	}

	conn := stats.Connections["abc12345-1111"]
	if conn.RoundTrips != 1 || conn.MaxRTT != 1500*time.Microsecond {
		t.Errorf("unexpected round trip stats: %+v", conn)
	}
	if conn.MeanRTT() != 1500*time.Microsecond {
		t.Errorf("MeanRTT = %v", conn.MeanRTT())
	}
	if conn.FD != 4 || conn.Role != log.RoleFilter {
		t.Errorf("unexpected connection identity: %+v", conn)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"SNMP_GET:",
		"Reply Statuses:",
		"Connections: 2",
		"[abc12345] FILTER fd=4",
		"Round trips: 1 (mean 1.500ms, max 1.500ms)",
		"Back Channel: 6 bytes",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if new(ConnectionStats).MeanRTT() != 0 {
		t.Error("MeanRTT of empty stats should be zero")
	}
}
