package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/trackingkind/linkd/pkg/log"
)

func TestStatsSummary(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Worker: log.WorkerManager, Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "LISTENING"}},
		{Timestamp: ts.Add(time.Second), ConnectionID: "link-0001", Worker: log.WorkerListener, Category: log.CategoryLink,
			PeerAddress: "00:1A:7D:DA:71:02", PeerName: "Device-A", Variant: "Secure", Link: &log.LinkEvent{Action: log.LinkOpened}},
		{Timestamp: ts.Add(2 * time.Second), ConnectionID: "link-0001", Direction: log.DirectionIn, Worker: log.WorkerPump, Category: log.CategoryData,
			Frame: log.NewFrameEvent(make([]byte, 10))},
		{Timestamp: ts.Add(3 * time.Second), ConnectionID: "link-0001", Direction: log.DirectionOut, Worker: log.WorkerPump, Category: log.CategoryData,
			Frame: log.NewFrameEvent(make([]byte, 4))},
		{Timestamp: ts.Add(4 * time.Second), ConnectionID: "link-0001", Worker: log.WorkerPump, Category: log.CategoryLink,
			Link: &log.LinkEvent{Action: log.LinkClosed, Reason: "EOF"}},
		{Timestamp: ts.Add(4 * time.Second), Worker: log.WorkerManager, Category: log.CategoryNotice, Notice: &log.NoticeEvent{Message: "Device connection was lost"}},
		{Timestamp: ts.Add(5 * time.Second), Worker: log.WorkerConnector, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "page timeout"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 7",
		"Bytes In:     10",
		"Bytes Out:    4",
		"Duration:   5s",
		"PUMP:",
		"LISTENER:",
		"NOTICE:",
		"Links: 1",
		"[link-000] 4 events",
		"10 bytes in, 4 bytes out",
		"Peer: Device-A (00:1A:7D:DA:71:02) Secure",
		"Closed: EOF",
		"1x Device connection was lost",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if strings.Contains(buf.String(), "Time Range") {
		t.Error("empty log should not print a time range")
	}
}

func TestStatsTruncatedLog(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Worker: log.WorkerManager, Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "LISTENING"}},
		{Timestamp: ts.Add(time.Second), Direction: log.DirectionIn, Worker: log.WorkerPump, Category: log.CategoryData,
			Frame: log.NewFrameEvent([]byte("cut short"))},
	})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-2); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Total Events: 1") {
		t.Errorf("expected the complete event to be counted, got:\n%s", output)
	}
	if !strings.Contains(output, "truncated record") {
		t.Errorf("expected truncation note, got:\n%s", output)
	}
}
