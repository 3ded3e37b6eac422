package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MemoryNetwork is an in-process radio medium. Transports attached to the
// same network can listen for and connect to each other over net.Pipe links.
type MemoryNetwork struct {
	mu        sync.Mutex
	listeners map[memoryKey]*memoryListener
}

type memoryKey struct {
	address string
	service uuid.UUID
}

// NewMemoryNetwork creates an empty network.
func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{
		listeners: make(map[memoryKey]*memoryListener),
	}
}

// Attach creates a transport for a device with the given address and name.
func (n *MemoryNetwork) Attach(address, name string) *MemoryTransport {
	return &MemoryTransport{
		network: n,
		self:    Peer{Address: address, Name: name},
	}
}

func (n *MemoryNetwork) register(l *memoryListener) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.listeners[l.key]; exists {
		return fmt.Errorf("service %s already listening on %s", l.key.service, l.key.address)
	}
	n.listeners[l.key] = l
	return nil
}

func (n *MemoryNetwork) unregister(l *memoryListener) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listeners[l.key] == l {
		delete(n.listeners, l.key)
	}
}

func (n *MemoryNetwork) lookup(key memoryKey) *memoryListener {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.listeners[key]
}

// MemoryTransport is one device on a MemoryNetwork.
type MemoryTransport struct {
	network *MemoryNetwork
	self    Peer

	discoveryCancels atomic.Int32
}

// Self returns the identity other devices see when this transport connects.
func (t *MemoryTransport) Self() Peer {
	return t.self
}

// Listen registers a listening endpoint for the service on this device.
func (t *MemoryTransport) Listen(svc ServiceRecord) (Listener, error) {
	l := &memoryListener{
		network:  t.network,
		key:      memoryKey{address: t.self.Address, service: svc.ID},
		incoming: make(chan memoryConn),
		closeCh:  make(chan struct{}),
	}
	if err := t.network.register(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Connect hands one end of a new pipe to the peer's listener and returns the
// other end.
func (t *MemoryTransport) Connect(ctx context.Context, peer Peer, svc ServiceRecord) (Link, error) {
	l := t.network.lookup(memoryKey{address: peer.Address, service: svc.ID})
	if l == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoListener, svc.Name, peer.Address)
	}

	local, remote := net.Pipe()
	select {
	case l.incoming <- memoryConn{link: remote, peer: t.self}:
		return local, nil
	case <-l.closeCh:
		local.Close()
		remote.Close()
		return nil, fmt.Errorf("connect %s: %w", peer.Address, ErrListenerClosed)
	case <-ctx.Done():
		local.Close()
		remote.Close()
		return nil, ctx.Err()
	}
}

// CancelDiscovery records the call. The memory network has no inquiry.
func (t *MemoryTransport) CancelDiscovery() {
	t.discoveryCancels.Add(1)
}

// DiscoveryCancels returns how many times CancelDiscovery was called.
func (t *MemoryTransport) DiscoveryCancels() int {
	return int(t.discoveryCancels.Load())
}

type memoryConn struct {
	link Link
	peer Peer
}

type memoryListener struct {
	network   *MemoryNetwork
	key       memoryKey
	incoming  chan memoryConn
	closeCh   chan struct{}
	closeOnce sync.Once
}

func (l *memoryListener) Accept() (Link, Peer, error) {
	select {
	case <-l.closeCh:
		return nil, Peer{}, ErrListenerClosed
	default:
	}

	select {
	case c := <-l.incoming:
		return c.link, c.peer, nil
	case <-l.closeCh:
		return nil, Peer{}, ErrListenerClosed
	}
}

func (l *memoryListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.closeCh)
		l.network.unregister(l)
	})
	return nil
}
