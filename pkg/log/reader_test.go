package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.llog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1", Direction: DirectionIn, Worker: WorkerPump, Category: CategoryData},
		{Timestamp: time.Now(), ConnectionID: "conn-2", Direction: DirectionOut, Worker: WorkerPump, Category: CategoryData},
		{Timestamp: time.Now(), ConnectionID: "", Worker: WorkerManager, Category: CategoryState},
	}

	reader, err := NewReader(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].ConnectionID != "conn-1" || read[1].ConnectionID != "conn-2" {
		t.Errorf("events out of order: %q, %q", read[0].ConnectionID, read[1].ConnectionID)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.llog")); err == nil {
		t.Error("NewReader on missing file succeeded")
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, ConnectionID: "conn-1", Direction: DirectionIn, Worker: WorkerPump, Category: CategoryData, PeerAddress: "AA"},
		{Timestamp: base.Add(time.Second), ConnectionID: "conn-1", Direction: DirectionOut, Worker: WorkerPump, Category: CategoryData, PeerAddress: "AA"},
		{Timestamp: base.Add(2 * time.Second), Worker: WorkerManager, Category: CategoryState},
		{Timestamp: base.Add(3 * time.Second), ConnectionID: "conn-2", Worker: WorkerConnector, Category: CategoryLink, PeerAddress: "BB"},
		{Timestamp: base.Add(4 * time.Second), Worker: WorkerConnector, Category: CategoryError},
	}
	path := createTestLogFile(t, events)

	in := DirectionIn
	connector := WorkerConnector
	state := CategoryState
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 5},
		{"ConnectionID", Filter{ConnectionID: "conn-1"}, 2},
		{"Direction", Filter{Direction: &in}, 1},
		{"Worker", Filter{Worker: &connector}, 2},
		{"Category", Filter{Category: &state}, 1},
		{"PeerAddress", Filter{PeerAddress: "BB"}, 1},
		{"TimeRange", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"Combined", Filter{Worker: &connector, PeerAddress: "BB"}, 1},
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

func TestReaderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.llog")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
	if !reader.Created().IsZero() {
		t.Errorf("Created() = %v, want zero", reader.Created())
	}
}

func TestReaderRejectsBadHeader(t *testing.T) {
	t.Run("Foreign", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "foreign.llog")
		if err := os.WriteFile(path, []byte("not cbor at all"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewReader(path); !errors.Is(err, ErrNotEventLog) {
			t.Errorf("error = %v, want ErrNotEventLog", err)
		}
	})

	t.Run("HeaderlessEvents", func(t *testing.T) {
		data, err := EncodeEvent(Event{Timestamp: time.Now(), ConnectionID: "conn-1"})
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "raw.llog")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewReader(path); !errors.Is(err, ErrNotEventLog) {
			t.Errorf("error = %v, want ErrNotEventLog", err)
		}
	})

	t.Run("FutureVersion", func(t *testing.T) {
		data, err := encMode.Marshal(fileHeader{Magic: FileMagic, Version: FormatVersion + 1})
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "future.llog")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewReader(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})
}

func TestReaderTruncatedRecord(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1"},
		{Timestamp: time.Now(), ConnectionID: "conn-2", Frame: NewFrameEvent([]byte("payload"))},
	})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatal(err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil || event.ConnectionID != "conn-1" {
		t.Fatalf("first Next() = %q, %v", event.ConnectionID, err)
	}
	if _, err := reader.Next(); !errors.Is(err, ErrTruncated) {
		t.Errorf("second Next() error = %v, want ErrTruncated", err)
	}
}

func TestReaderEvents(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1"},
		{Timestamp: time.Now(), ConnectionID: "conn-2"},
		{Timestamp: time.Now(), ConnectionID: "conn-3"},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var ids []string
	for event, err := range reader.Events() {
		if err != nil {
			t.Fatalf("Events yielded error: %v", err)
		}
		ids = append(ids, event.ConnectionID)
		if len(ids) == 2 {
			break
		}
	}
	if len(ids) != 2 || ids[0] != "conn-1" || ids[1] != "conn-2" {
		t.Errorf("ids = %v", ids)
	}

	// Iteration resumes where the previous loop stopped.
	for event, err := range reader.Events() {
		if err != nil {
			t.Fatalf("Events yielded error: %v", err)
		}
		ids = append(ids, event.ConnectionID)
	}
	if len(ids) != 3 || ids[2] != "conn-3" {
		t.Errorf("ids = %v", ids)
	}
}
