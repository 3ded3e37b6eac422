package connection

import (
	"context"
	"sync"
	"time"

	"github.com/trackingkind/linkd/pkg/transport"
)

// RedialConfig configures a Redialer.
type RedialConfig struct {
	// Peer is the device to keep connected to.
	Peer transport.Peer

	// Secure selects the secure service variant.
	Secure bool

	// Backoff controls the delay between attempts.
	Backoff BackoffConfig

	// MaxAttempts limits consecutive failed attempts. Zero means unlimited.
	MaxAttempts int
}

// Redialer keeps a manager connected to one peer. It connects on Start and
// connects again, after a backoff delay, whenever an attempt fails or the
// link is lost. It stays idle while the manager is stopped or busy.
type Redialer struct {
	m       *Manager
	config  RedialConfig
	backoff *Backoff

	mu       sync.Mutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	onRedial func(attempt int, delay time.Duration)

	redialCh chan struct{}
}

// NewRedialer creates a redialer for m. It registers an event handler on m;
// nothing happens until Start is called.
func NewRedialer(m *Manager, config RedialConfig) *Redialer {
	r := &Redialer{
		m:        m,
		config:   config,
		backoff:  NewBackoffWithConfig(config.Backoff),
		redialCh: make(chan struct{}, 1),
	}
	m.OnEvent(r.handleEvent)
	return r
}

// OnRedial sets a callback invoked before each delayed attempt.
func (r *Redialer) OnRedial(fn func(attempt int, delay time.Duration)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRedial = fn
}

// Start begins the first connect attempt. Calling Start while running does
// nothing.
func (r *Redialer) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.backoff.Reset()
	r.wg.Add(1)
	go r.loop(r.ctx)
	r.mu.Unlock()

	r.m.Connect(r.config.Peer, r.config.Secure)
}

// Stop ends redialing. It does not touch the manager's current state.
func (r *Redialer) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
}

// Attempts returns the number of redials since the last successful link.
func (r *Redialer) Attempts() int {
	return r.backoff.Attempts()
}

func (r *Redialer) handleEvent(e Event) {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return
	}

	switch e.Type {
	case EventNotice:
		if e.Message == NoticeConnectFailed || e.Message == NoticeConnectionLost {
			select {
			case r.redialCh <- struct{}{}:
			default:
				// Already pending
			}
		}
	case EventStateChanged:
		if e.State == StateConnected {
			r.backoff.Reset()
		}
	}
}

func (r *Redialer) loop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.redialCh:
			r.redial(ctx)
		}
	}
}

func (r *Redialer) redial(ctx context.Context) {
	if r.config.MaxAttempts > 0 && r.backoff.Attempts() >= r.config.MaxAttempts {
		r.m.debugLog("redial gave up", "peer", r.config.Peer.String(), "attempts", r.backoff.Attempts())
		return
	}

	delay := r.backoff.Next()

	r.mu.Lock()
	onRedial := r.onRedial
	r.mu.Unlock()
	if onRedial != nil {
		onRedial(r.backoff.Attempts(), delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	// Only a manager that fell back to listening is redialed. NONE means
	// it was stopped, CONNECTING or CONNECTED means someone else won.
	if r.m.State() != StateListening {
		return
	}
	r.m.debugLog("redial", "peer", r.config.Peer.String(), "attempt", r.backoff.Attempts())
	r.m.Connect(r.config.Peer, r.config.Secure)
}
