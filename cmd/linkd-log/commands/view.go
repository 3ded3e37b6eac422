// Package commands implements the linkd-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/trackingkind/linkd/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Worker    *log.Worker
	Direction *log.Direction
	Category  *log.Category
	Peer      string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Worker:      f.Worker,
		Direction:   f.Direction,
		Category:    f.Category,
		PeerAddress: f.Peer,
	}
}

// eventLabel names the payload carried by the event.
func eventLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.StateChange != nil:
		return "State"
	case event.Link != nil:
		return "Link " + event.Link.Action.String()
	case event.Notice != nil:
		return "Notice"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION WORKER Label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)
	if connID == "" {
		connID = "-"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, event.Direction.String(), event.Worker.String(), eventLabel(event))

	if event.PeerAddress != "" {
		peer := event.PeerAddress
		if event.PeerName != "" {
			peer = fmt.Sprintf("%s (%s)", event.PeerName, event.PeerAddress)
		}
		if event.Variant != "" {
			peer += " " + event.Variant
		}
		fmt.Fprintf(w, "  Peer: %s\n", peer)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Link != nil:
		if event.Link.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.Link.Reason)
		}
	case event.Notice != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Notice.Message)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) == 0 {
		return
	}
	fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
	if frame.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
	if isPrintable(frame.Data) {
		fmt.Fprintf(w, "  Text: %q\n", string(frame.Data))
	}
}

func isPrintable(data []byte) bool {
	for _, r := range string(data) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseWorkerFlag parses a worker name (case-insensitive).
func ParseWorkerFlag(s string) (log.Worker, error) {
	switch strings.ToLower(s) {
	case "manager":
		return log.WorkerManager, nil
	case "listener":
		return log.WorkerListener, nil
	case "connector":
		return log.WorkerConnector, nil
	case "pump":
		return log.WorkerPump, nil
	default:
		return 0, fmt.Errorf("invalid worker: %s (must be manager, listener, connector, or pump)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "data":
		return log.CategoryData, nil
	case "state":
		return log.CategoryState, nil
	case "link":
		return log.CategoryLink, nil
	case "notice":
		return log.CategoryNotice, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be data, state, link, notice, or error)", s)
	}
}

// RunView prints every matching event of the log file to output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, log.ErrTruncated):
			fmt.Fprintln(output, "(log ends with a truncated record)")
			return nil
		case err != nil:
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
