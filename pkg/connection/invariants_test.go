package connection

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trackingkind/linkd/pkg/log"
	"github.com/trackingkind/linkd/pkg/transport"
	"github.com/trackingkind/linkd/pkg/transport/mocks"
)

// assertInvariants checks the worker bookkeeping of m in one consistent
// snapshot.
func assertInvariants(t *testing.T, m *Manager) bool {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	ok := true
	if (m.state == StateConnected) != (m.pump != nil) {
		ok = assert.Fail(t, "pump and state disagree", "state %s, pump set: %v", m.state, m.pump != nil)
	}
	if (m.state == StateConnecting) != (m.connector != nil) {
		ok = assert.Fail(t, "connector and state disagree", "state %s, connector set: %v", m.state, m.connector != nil)
	}
	if m.pump != nil && (m.secureListener != nil || m.insecureListener != nil) {
		ok = assert.Fail(t, "listener alive next to a pump")
	}
	if m.pump != nil && m.connector != nil {
		ok = assert.Fail(t, "connector alive next to a pump")
	}
	return ok
}

func assertNoWorkers(t *testing.T, m *Manager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	assert.Equal(t, StateNone, m.state)
	assert.Nil(t, m.pump)
	assert.Nil(t, m.connector)
	assert.Nil(t, m.secureListener)
	assert.Nil(t, m.insecureListener)
}

func TestManagerInvariantsUnderChurn(t *testing.T) {
	const (
		goroutines = 4
		ops        = 500
	)

	network := transport.NewMemoryNetwork()
	local := network.Attach(localDevice.Address, localDevice.Name)
	remote := network.Attach(remoteDevice.Address, remoteDevice.Name)

	a := NewManager(local, Config{BufferSize: 16})
	b := NewManager(remote, Config{BufferSize: 16})
	managers := []*Manager{a, b}
	peers := []transport.Peer{remoteDevice, localDevice}

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(g), 42))

			for range ops {
				i := rng.IntN(len(managers))
				m := managers[i]

				switch rng.IntN(4) {
				case 0:
					m.StartListening()
				case 1:
					m.Connect(peers[i], rng.IntN(2) == 0)
				case 2:
					m.Stop()
				case 3:
					err := m.Send([]byte("churn"))
					assert.NotErrorIs(t, err, ErrClosed)
				}

				if !assertInvariants(t, m) {
					return
				}
				if rng.IntN(8) == 0 {
					time.Sleep(time.Duration(rng.IntN(200)) * time.Microsecond)
				}
			}
		}()
	}
	wg.Wait()

	for _, m := range managers {
		m.Stop()
		assertInvariants(t, m)
		assertNoWorkers(t, m)
	}

	// Close returns only after every worker goroutine has exited.
	done := make(chan struct{})
	go func() {
		a.Close()
		b.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers still running after Stop")
	}

	for _, m := range managers {
		assertNoWorkers(t, m)
	}
	for _, p := range peers {
		for _, svc := range []transport.ServiceRecord{transport.SecureService, transport.InsecureService} {
			_, err := local.Connect(t.Context(), p, svc)
			assert.ErrorIs(t, err, transport.ErrNoListener, "%s still listening on %s", svc.Name, p.Address)
		}
	}
}

func TestManagerLockNotHeldAcrossIO(t *testing.T) {
	t.Run("ProtocolLoggerReadsState", func(t *testing.T) {
		tr := mocks.NewMockTransport(t)
		tr.EXPECT().Listen(mock.Anything).Return(nil, errors.New("radio off")).Maybe()

		var (
			m      *Manager
			logged atomic.Int32
		)
		logger := log.LoggerFunc(func(log.Event) {
			_ = m.State()
			logged.Add(1)
		})
		m, _ = newTestManager(t, tr, Config{ProtocolLogger: logger})

		done := make(chan struct{})
		go func() {
			m.StartListening()
			m.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("manager blocked on its protocol logger")
		}
		require.Eventually(t, func() bool { return logged.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("SlowListen", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		var entered atomic.Int32
		tr := mocks.NewMockTransport(t)
		tr.EXPECT().Listen(mock.Anything).RunAndReturn(func(transport.ServiceRecord) (transport.Listener, error) {
			entered.Add(1)
			<-release
			return nil, errors.New("radio off")
		}).Maybe()

		m, _ := newTestManager(t, tr, Config{})
		m.StartListening()
		require.Eventually(t, func() bool { return entered.Load() == 2 }, time.Second, 5*time.Millisecond)

		done := make(chan struct{})
		go func() {
			assert.Equal(t, StateListening, m.State())
			m.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("manager blocked while a listener was opening its service")
		}
		assert.Equal(t, StateNone, m.State())
	})

	t.Run("SlowListenerClose", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		ln := mocks.NewMockListener(t)
		accepting := make(chan struct{})
		closing := make(chan struct{})
		var acceptOnce, closeOnce sync.Once
		ln.EXPECT().Accept().RunAndReturn(func() (transport.Link, transport.Peer, error) {
			acceptOnce.Do(func() { close(accepting) })
			<-closing
			return nil, transport.Peer{}, transport.ErrListenerClosed
		}).Maybe()
		ln.EXPECT().Close().RunAndReturn(func() error {
			closeOnce.Do(func() { close(closing) })
			<-release
			return nil
		}).Maybe()

		tr := mocks.NewMockTransport(t)
		tr.EXPECT().Listen(transport.SecureService).Return(ln, nil).Once()
		tr.EXPECT().Listen(transport.InsecureService).Return(nil, errors.New("radio off")).Maybe()

		m, _ := newTestManager(t, tr, Config{})
		m.StartListening()
		select {
		case <-accepting:
		case <-time.After(time.Second):
			t.Fatal("secure listener never started accepting")
		}

		done := make(chan struct{})
		go func() {
			m.Stop()
			_ = m.State()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("manager blocked while a listener was closing")
		}
	})
}
