package log

import (
	"strings"
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "test-conn",
		Category:     CategoryState,
		StateChange:  &StateChangeEvent{NewState: "LISTENING"},
	}
	logger.Log(event)

	event.StateChange = nil
	event.Frame = &FrameEvent{Size: 3, Data: []byte{1, 2, 3}}
	logger.Log(event)

	var zero NoopLogger
	zero.Log(Event{})
}

func TestLoggerFunc(t *testing.T) {
	var got []Event
	logger := LoggerFunc(func(e Event) { got = append(got, e) })

	logger.Log(Event{ConnectionID: "a"})
	logger.Log(Event{ConnectionID: "b"})

	if len(got) != 2 || got[0].ConnectionID != "a" || got[1].ConnectionID != "b" {
		t.Errorf("got %v", got)
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	var order []string
	m := NewMultiLogger(
		LoggerFunc(func(Event) { order = append(order, "a") }),
		nil,
		LoggerFunc(func(Event) { order = append(order, "b") }),
	)

	if len(m) != 2 {
		t.Fatalf("len = %d, want 2 (nil skipped)", len(m))
	}

	m.Log(Event{})
	m.Log(Event{})

	if want := "abab"; strings.Join(order, "") != want {
		t.Errorf("order = %v, want %s", order, want)
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	m := NewMultiLogger()
	m.Log(Event{})
	if len(m) != 0 {
		t.Errorf("len = %d, want 0", len(m))
	}
}

func TestCombine(t *testing.T) {
	if l := Combine(); l != nil {
		t.Errorf("Combine() = %v, want nil", l)
	}
	if l := Combine(nil, nil); l != nil {
		t.Errorf("Combine(nil, nil) = %v, want nil", l)
	}

	var got int
	single := LoggerFunc(func(Event) { got++ })
	l := Combine(nil, single)
	if _, ok := l.(LoggerFunc); !ok {
		t.Fatalf("Combine with one logger returned %T, want LoggerFunc", l)
	}
	l.Log(Event{})
	if got != 1 {
		t.Errorf("got = %d, want 1", got)
	}

	if _, ok := Combine(single, NoopLogger{}).(MultiLogger); !ok {
		t.Error("Combine with two loggers should return a MultiLogger")
	}
}
