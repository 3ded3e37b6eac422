package connection

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trackingkind/linkd/pkg/transport"
)

// recorder collects events delivered to a handler.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) types() []EventType {
	var types []EventType
	for _, e := range r.snapshot() {
		types = append(types, e.Type)
	}
	return types
}

// states returns the states of all StateChanged events, in order.
func (r *recorder) states() []State {
	var states []State
	for _, e := range r.snapshot() {
		if e.Type == EventStateChanged {
			states = append(states, e.State)
		}
	}
	return states
}

func (r *recorder) waitFor(t *testing.T, n int) []Event {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(r.snapshot()) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d events, got %v", n, r.types())
	return r.snapshot()
}

func newTestManager(t *testing.T, tr transport.Transport, config Config) (*Manager, *recorder) {
	t.Helper()
	m := NewManager(tr, config)
	rec := &recorder{}
	m.OnEvent(rec.handle)
	t.Cleanup(m.Close)
	return m, rec
}

// dialWhenListening connects from to the peer once its listener for svc is
// up. Listeners open their service on their own goroutine.
func dialWhenListening(t *testing.T, from transport.Transport, peer transport.Peer, svc transport.ServiceRecord) transport.Link {
	t.Helper()
	var link transport.Link
	require.Eventually(t, func() bool {
		l, err := from.Connect(context.Background(), peer, svc)
		if err != nil {
			return false
		}
		link = l
		return true
	}, 2*time.Second, 5*time.Millisecond, "no %s listener at %s", svc.Name, peer.Address)
	return link
}

// scriptedLink returns its reads in order, then readErr. With a nil readErr
// it blocks until closed.
type scriptedLink struct {
	mu       sync.Mutex
	reads    [][]byte
	readErr  error
	writeErr error
	written  [][]byte

	closed    chan struct{}
	closeOnce sync.Once
}

func newScriptedLink(reads ...[]byte) *scriptedLink {
	return &scriptedLink{reads: reads, closed: make(chan struct{})}
}

func (l *scriptedLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	if len(l.reads) > 0 {
		n := copy(p, l.reads[0])
		l.reads = l.reads[1:]
		l.mu.Unlock()
		return n, nil
	}
	err := l.readErr
	l.mu.Unlock()

	if err != nil {
		return 0, err
	}
	<-l.closed
	return 0, io.ErrClosedPipe
}

func (l *scriptedLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return 0, l.writeErr
	}
	l.written = append(l.written, append([]byte(nil), p...))
	return len(p), nil
}

func (l *scriptedLink) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

func (l *scriptedLink) isClosed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

func (l *scriptedLink) writes() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.written...)
}
