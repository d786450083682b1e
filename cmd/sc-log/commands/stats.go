package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/wire"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Commands          map[wire.Command]int
	Statuses          map[wire.Status]int
	Connections       map[string]*ConnectionStats
	Errors            int
	BackChannelBytes  int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single channel.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Role       log.Role
	FD         int
	RoundTrips int
	TotalRTT   time.Duration
	MaxRTT     time.Duration
}

// MeanRTT returns the mean client round-trip time.
func (c *ConnectionStats) MeanRTT() time.Duration {
	if c.RoundTrips == 0 {
		return 0
	}
	return c.TotalRTT / time.Duration(c.RoundTrips)
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Commands:          make(map[wire.Command]int),
		Statuses:          make(map[wire.Status]int),
		Connections:       make(map[string]*ConnectionStats),
	}
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
			Role:      event.LocalRole,
			FD:        event.FD,
		}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}

	switch {
	case event.Message != nil:
		// Wire-layer messages count each command once per direction.
		if event.Layer == log.LayerWire {
			s.Commands[event.Message.Command]++
			if event.Direction == log.DirectionIn {
				s.Statuses[event.Message.Status]++
			}
		}
		if event.Layer == log.LayerClient && event.Message.RoundTrip != nil {
			rt := *event.Message.RoundTrip
			conn.RoundTrips++
			conn.TotalRTT += rt
			if rt > conn.MaxRTT {
				conn.MaxRTT = rt
			}
		}
	case event.BackChannel != nil:
		s.BackChannelBytes += event.BackChannel.Size
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Side Channel Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerClient} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryBackChannel, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Commands) > 0 {
		fmt.Fprintln(w, "Commands:")
		for c := wire.CmdSoftReset; c < wire.CmdMax; c++ {
			if count := stats.Commands[c]; count > 0 {
				fmt.Fprintf(w, "  %-16s %d\n", c.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if len(stats.Statuses) > 0 {
		fmt.Fprintln(w, "Reply Statuses:")
		statuses := make([]wire.Status, 0, len(stats.Statuses))
		for s := range stats.Statuses {
			statuses = append(statuses, s)
		}
		sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
		for _, s := range statuses {
			fmt.Fprintf(w, "  %-16s %d\n", s.String()+":", stats.Statuses[s])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s fd=%d, %d events, duration %s\n",
				shortenConnID(c.id), c.stats.Role, c.stats.FD, c.stats.Events, duration)
			if c.stats.RoundTrips > 0 {
				fmt.Fprintf(w, "           Round trips: %d (mean %s, max %s)\n",
					c.stats.RoundTrips, formatDuration(c.stats.MeanRTT()), formatDuration(c.stats.MaxRTT))
			}
		}
	}

	if stats.BackChannelBytes > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Back Channel: %d bytes\n", stats.BackChannelBytes)
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
