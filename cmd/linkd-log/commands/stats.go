package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/trackingkind/linkd/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByWorker    map[log.Worker]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	BytesIn           int
	BytesOut          int
	Links             map[string]*LinkStats
	Notices           map[string]int
	Errors            int
	Truncated         bool
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// LinkStats holds statistics for a single link.
type LinkStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Peer      string
	Variant   string
	BytesIn   int
	BytesOut  int
	Closed    string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByWorker:    make(map[log.Worker]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Links:             make(map[string]*LinkStats),
		Notices:           make(map[string]int),
	}

	for event, err := range reader.Events() {
		if errors.Is(err, log.ErrTruncated) {
			stats.Truncated = true
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

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByWorker[event.Worker]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Notice != nil {
		s.Notices[event.Notice.Message]++
	}
	if event.Error != nil {
		s.Errors++
	}

	size := 0
	if event.Frame != nil {
		size = event.Frame.Size
		switch event.Direction {
		case log.DirectionIn:
			s.BytesIn += size
		case log.DirectionOut:
			s.BytesOut += size
		}
	}

	if event.ConnectionID == "" {
		return
	}
	link, ok := s.Links[event.ConnectionID]
	if !ok {
		link = &LinkStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Links[event.ConnectionID] = link
	}
	link.Events++
	if event.Timestamp.After(link.LastSeen) {
		link.LastSeen = event.Timestamp
	}
	if link.Peer == "" && event.PeerAddress != "" {
		link.Peer = event.PeerAddress
		if event.PeerName != "" {
			link.Peer = event.PeerName + " (" + event.PeerAddress + ")"
		}
	}
	if link.Variant == "" {
		link.Variant = event.Variant
	}
	switch event.Direction {
	case log.DirectionIn:
		link.BytesIn += size
	case log.DirectionOut:
		link.BytesOut += size
	}
	if event.Link != nil && event.Link.Action == log.LinkClosed {
		link.Closed = event.Link.Reason
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Link Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.Truncated {
		fmt.Fprintln(w, "              (log ends with a truncated record)")
	}
	fmt.Fprintf(w, "Bytes In:     %d\n", stats.BytesIn)
	fmt.Fprintf(w, "Bytes Out:    %d\n", stats.BytesOut)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Worker:")
	for _, worker := range []log.Worker{log.WorkerManager, log.WorkerListener, log.WorkerConnector, log.WorkerPump} {
		if count := stats.EventsByWorker[worker]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", worker.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryData, log.CategoryState, log.CategoryLink, log.CategoryNotice, log.CategoryError} {
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

	fmt.Fprintf(w, "Links: %d\n", len(stats.Links))
	if len(stats.Links) > 0 {
		ids := make([]string, 0, len(stats.Links))
		for id := range stats.Links {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b string) int {
			return stats.Links[a].FirstSeen.Compare(stats.Links[b].FirstSeen)
		})

		fmt.Fprintln(w)
		for _, id := range ids {
			l := stats.Links[id]
			duration := l.LastSeen.Sub(l.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s, %d bytes in, %d bytes out\n",
				shortenConnID(id), l.Events, duration, l.BytesIn, l.BytesOut)
			if l.Peer != "" {
				fmt.Fprintf(w, "           Peer: %s %s\n", l.Peer, l.Variant)
			}
			if l.Closed != "" {
				fmt.Fprintf(w, "           Closed: %s\n", l.Closed)
			}
		}
	}

	if len(stats.Notices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Notices:")
		messages := make([]string, 0, len(stats.Notices))
		for msg := range stats.Notices {
			messages = append(messages, msg)
		}
		slices.Sort(messages)
		for _, msg := range messages {
			fmt.Fprintf(w, "  %dx %s\n", stats.Notices[msg], msg)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
