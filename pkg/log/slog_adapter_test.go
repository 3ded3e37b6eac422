package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func captureSlog(t *testing.T, a func(*slog.Logger) *SlogAdapter, level slog.Level, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	a(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	entry := captureSlog(t, NewSlogAdapter, slog.LevelDebug, Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Worker:       WorkerPump,
		Category:     CategoryData,
		PeerAddress:  "AA:BB",
		PeerName:     "Device-A",
		Frame:        &FrameEvent{Size: 10, Data: []byte{1}},
	})

	if entry["msg"] != "link data" {
		t.Errorf("msg: got %v, want link data", entry["msg"])
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v", entry["level"])
	}
	if entry["conn"] != "conn-123" || entry["dir"] != "IN" || entry["worker"] != "PUMP" {
		t.Errorf("conn/dir/worker: got %v/%v/%v", entry["conn"], entry["dir"], entry["worker"])
	}
	peer, ok := entry["peer"].(map[string]any)
	if !ok || peer["address"] != "AA:BB" || peer["name"] != "Device-A" {
		t.Errorf("peer: got %v", entry["peer"])
	}
	if entry["size"] != float64(10) {
		t.Errorf("size: got %v", entry["size"])
	}
	if _, ok := entry["truncated"]; ok {
		t.Error("truncated should be omitted for complete frames")
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := captureSlog(t, NewSlogAdapter, slog.LevelDebug, Event{
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: "CONNECTING", NewState: "CONNECTED", Reason: "Device-A"},
	})

	if entry["msg"] != "link state" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["from"] != "CONNECTING" || entry["to"] != "CONNECTED" || entry["reason"] != "Device-A" {
		t.Errorf("state attrs: %v", entry)
	}
	for _, key := range []string{"peer", "conn", "dir"} {
		if _, ok := entry[key]; ok {
			t.Errorf("empty %s should be omitted", key)
		}
	}
}

func TestSlogAdapterLogsLinkNoticeAndError(t *testing.T) {
	link := captureSlog(t, NewSlogAdapter, slog.LevelDebug, Event{Category: CategoryLink, Variant: "Insecure", Link: &LinkEvent{Action: LinkOpened}})
	if link["action"] != "OPENED" || link["variant"] != "Insecure" {
		t.Errorf("link attrs: %v", link)
	}

	notice := captureSlog(t, NewSlogAdapter, slog.LevelDebug, Event{Category: CategoryNotice, Notice: &NoticeEvent{Message: "Unable to connect device"}})
	if notice["notice"] != "Unable to connect device" {
		t.Errorf("notice attrs: %v", notice)
	}

	errEntry := captureSlog(t, NewSlogAdapter, slog.LevelDebug, Event{Category: CategoryError, Error: &ErrorEventData{Message: "boom", Context: "write"}})
	if errEntry["error"] != "boom" || errEntry["during"] != "write" {
		t.Errorf("error attrs: %v", errEntry)
	}
	if errEntry["level"] != "WARN" {
		t.Errorf("error level: got %v, want WARN", errEntry["level"])
	}
}

func TestSlogAdapterLevels(t *testing.T) {
	data := Event{Category: CategoryData, Frame: &FrameEvent{Size: 1}}
	failure := Event{Category: CategoryError, Error: &ErrorEventData{Message: "boom"}}

	if entry := captureSlog(t, NewSlogAdapter, slog.LevelInfo, data); entry != nil {
		t.Errorf("debug event logged at info threshold: %v", entry)
	}
	if entry := captureSlog(t, NewSlogAdapter, slog.LevelInfo, failure); entry == nil {
		t.Error("error event suppressed at info threshold")
	}

	info := func(l *slog.Logger) *SlogAdapter { return NewSlogAdapter(l).WithLevel(slog.LevelInfo) }
	if entry := captureSlog(t, info, slog.LevelInfo, data); entry == nil || entry["level"] != "INFO" {
		t.Errorf("WithLevel(info) entry: %v", entry)
	}
}
