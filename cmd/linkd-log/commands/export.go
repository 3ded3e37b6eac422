package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/trackingkind/linkd/pkg/log"
)

// record is the flat form of an event written by export.
type record struct {
	Time        time.Time `json:"time"`
	Conn        string    `json:"connection_id,omitempty"`
	Direction   string    `json:"direction"`
	Worker      string    `json:"worker"`
	Category    string    `json:"category"`
	PeerAddress string    `json:"peer_address,omitempty"`
	PeerName    string    `json:"peer_name,omitempty"`
	Variant     string    `json:"variant,omitempty"`
	Type        string    `json:"type"`
	Size        *int      `json:"size,omitempty"`
	Data        string    `json:"data,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

func newRecord(event log.Event) record {
	r := record{
		Time:        event.Timestamp.UTC(),
		Conn:        event.ConnectionID,
		Direction:   event.Direction.String(),
		Worker:      event.Worker.String(),
		Category:    event.Category.String(),
		PeerAddress: event.PeerAddress,
		PeerName:    event.PeerName,
		Variant:     event.Variant,
		Type:        eventLabel(event),
	}
	switch {
	case event.Frame != nil:
		size := event.Frame.Size
		r.Size = &size
		r.Data = hex.EncodeToString(event.Frame.Data)
	case event.StateChange != nil:
		r.Detail = event.StateChange.Reason
	case event.Link != nil:
		r.Detail = event.Link.Reason
	case event.Notice != nil:
		r.Detail = event.Notice.Message
	case event.Error != nil:
		r.Detail = event.Error.Context + ": " + event.Error.Message
	}
	return r
}

var csvHeader = []string{"timestamp", "connection_id", "direction", "worker", "category", "peer_address", "peer_name", "variant", "type", "size", "detail"}

func (r record) csvRow() []string {
	size := ""
	if r.Size != nil {
		size = strconv.Itoa(*r.Size)
	}
	return []string{
		r.Time.Format("2006-01-02T15:04:05.000000Z"),
		r.Conn,
		r.Direction,
		r.Worker,
		r.Category,
		r.PeerAddress,
		r.PeerName,
		r.Variant,
		r.Type,
		size,
		r.Detail,
	}
}

// RunExport writes every event of the log file as jsonl or csv to output,
// or to stdout when output is empty.
func RunExport(path, format, output string) (err error) {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, ferr := os.Create(output)
		if ferr != nil {
			return fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	var write func(record) error
	flush := func() error { return nil }

	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		write = func(r record) error { return enc.Encode(r) }
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		write = func(r record) error { return cw.Write(r.csvRow()) }
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
	}

	for event, err := range reader.Events() {
		if errors.Is(err, log.ErrTruncated) {
			fmt.Fprintln(os.Stderr, "warning: log ends with a truncated record")
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := write(newRecord(event)); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	return flush()
}
