package connection

import (
	"errors"
	"sync"

	"github.com/trackingkind/linkd/pkg/log"
	"github.com/trackingkind/linkd/pkg/transport"
)

// listener accepts inbound links for one service variant.
type listener struct {
	m       *Manager
	variant transport.Variant
	after   <-chan struct{} // closed once the previous listener released the service

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// newListener starts the accept loop for the variant. Opening the service
// binds and advertises it, so that happens on the worker goroutine, after
// the variant's previous listener has closed its endpoint.
// Must be called with m.mu held.
func (m *Manager) newListener(v transport.Variant) *listener {
	l := &listener{
		m:       m,
		variant: v,
		after:   m.listenerExits[v],
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.listenerExits[v] = l.done
	m.startWorker(l.run)
	return l
}

func (l *listener) run() {
	defer l.m.listenerDone(l)
	defer close(l.done)

	if l.after != nil {
		<-l.after
	}
	if l.isCancelled() {
		return
	}

	svc := transport.ServiceFor(l.variant)
	ln, err := l.m.transport.Listen(svc)
	if err != nil {
		if l.m.logger != nil {
			l.m.logger.Warn("listen failed", "service", svc.Name, "error", err)
		}
		l.m.recordError(log.WorkerListener, "", err, "listen "+svc.Name)
		return
	}
	l.m.debugLog("listening", "service", svc.Name, "variant", l.variant.String())

	// Closing the endpoint unblocks a pending Accept. It runs here rather
	// than in cancel, which is called under m.mu.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-l.stop
		closeQuietly(l.m, ln, "listener "+l.variant.String())
	}()
	defer func() {
		l.cancel()
		<-closed
	}()

	for {
		link, peer, err := ln.Accept()
		if err != nil {
			if !l.isCancelled() && !errors.Is(err, transport.ErrListenerClosed) {
				if l.m.logger != nil {
					l.m.logger.Warn("accept failed", "variant", l.variant.String(), "error", err)
				}
				l.m.recordError(log.WorkerListener, "", err, "accept "+l.variant.String())
			}
			return
		}

		l.m.debugLog("accepted link", "peer", peer.String(), "variant", l.variant.String())
		l.m.connected(link, peer, l.variant, l)

		if l.isCancelled() || l.m.State() == StateConnected {
			return
		}
	}
}

// cancel asks the accept loop to close its endpoint and exit. It does no
// I/O itself.
func (l *listener) cancel() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *listener) isCancelled() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}
