package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/trackingkind/linkd/pkg/discovery"
)

// Default TCP ports for the two service variants.
const (
	DefaultSecurePort   = 7401
	DefaultInsecurePort = 7402
)

// DefaultHelloTimeout bounds how long an accepted connection may take to
// send its hello.
const DefaultHelloTimeout = 5 * time.Second

// TCPConfig configures a TCPTransport.
type TCPConfig struct {
	// Name is the local device name sent to the accepting side.
	Name string

	// Host is the address to listen on. Empty means all interfaces.
	Host string

	// SecurePort and InsecurePort are the listening and default dialing
	// ports of the two variants.
	SecurePort   int
	InsecurePort int

	// HelloTimeout bounds the hello exchange on accepted connections.
	HelloTimeout time.Duration

	// Advertiser, when set, publishes every listening service.
	Advertiser discovery.Advertiser

	// Browser, when set, is used by Discover and to resolve peers given by
	// device name.
	Browser discovery.Browser
}

func (c *TCPConfig) applyDefaults() {
	if c.SecurePort == 0 {
		c.SecurePort = DefaultSecurePort
	}
	if c.InsecurePort == 0 {
		c.InsecurePort = DefaultInsecurePort
	}
	if c.HelloTimeout == 0 {
		c.HelloTimeout = DefaultHelloTimeout
	}
}

// TCPTransport emulates RFCOMM links over TCP. Each service variant has its
// own port, and the dialer opens every link with a hello naming the service
// and itself.
type TCPTransport struct {
	config TCPConfig

	mu           sync.Mutex
	browseCancel context.CancelFunc
	discovered   map[string]*discovery.PeerService // keyed by device name + variant
}

// NewTCPTransport creates a TCP transport.
func NewTCPTransport(config TCPConfig) *TCPTransport {
	config.applyDefaults()
	return &TCPTransport{
		config:     config,
		discovered: make(map[string]*discovery.PeerService),
	}
}

func (t *TCPTransport) port(v Variant) int {
	if v == VariantSecure {
		return t.config.SecurePort
	}
	return t.config.InsecurePort
}

// Listen binds the variant's port and, when an advertiser is configured,
// publishes the service over mDNS. Advertising is best effort.
func (t *TCPTransport) Listen(svc ServiceRecord) (Listener, error) {
	addr := net.JoinHostPort(t.config.Host, strconv.Itoa(t.port(svc.Variant)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s on %s: %w", svc.Name, addr, err)
	}

	l := newTCPListener(ln, svc, t.config.HelloTimeout)

	if t.config.Advertiser != nil {
		port := ln.Addr().(*net.TCPAddr).Port
		info := &discovery.ServiceInfo{
			ServiceID:  svc.ID,
			Secure:     svc.Variant == VariantSecure,
			DeviceName: t.config.Name,
			Port:       uint16(port),
		}
		if err := t.config.Advertiser.Advertise(context.Background(), info); err == nil {
			l.advertiser = t.config.Advertiser
		}
	}

	return l, nil
}

// Connect dials the peer and sends the hello for the service. The peer
// address may be "host", "host:port" or a device name discovered earlier.
func (t *TCPTransport) Connect(ctx context.Context, peer Peer, svc ServiceRecord) (Link, error) {
	addr, err := t.dialAddress(peer.Address, svc.Variant)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if err := writeHello(conn, svc, t.config.Name, t.port(svc.Variant)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello to %s: %w", addr, err)
	}
	return conn, nil
}

// CancelDiscovery stops an in-flight Discover.
func (t *TCPTransport) CancelDiscovery() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.browseCancel != nil {
		t.browseCancel()
		t.browseCancel = nil
	}
}

// Discover browses for advertised link services and reports each device
// once. Discovered devices can then be dialed by name. The channel closes
// when ctx is done or CancelDiscovery is called.
func (t *TCPTransport) Discover(ctx context.Context) (<-chan Peer, error) {
	if t.config.Browser == nil {
		return nil, fmt.Errorf("discover: %w", ErrUnsupported)
	}

	ctx, cancel := context.WithCancel(ctx)
	results, err := t.config.Browser.Browse(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	t.mu.Lock()
	if t.browseCancel != nil {
		t.browseCancel()
	}
	t.browseCancel = cancel
	t.mu.Unlock()

	out := make(chan Peer)
	go func() {
		defer close(out)
		defer cancel()

		seen := make(map[string]bool)
		for svc := range results {
			if svc.DeviceName == "" || len(svc.Addresses) == 0 {
				continue
			}
			t.remember(svc)

			if seen[svc.DeviceName] {
				continue
			}
			seen[svc.DeviceName] = true

			select {
			case out <- Peer{Address: svc.DeviceName, Name: svc.DeviceName}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func discoveredKey(name string, secure bool) string {
	if secure {
		return name + "/secure"
	}
	return name + "/insecure"
}

func (t *TCPTransport) remember(svc *discovery.PeerService) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.discovered[discoveredKey(svc.DeviceName, svc.Secure)] = svc
}

// dialAddress resolves a peer address into host:port for the variant.
func (t *TCPTransport) dialAddress(address string, v Variant) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	t.mu.Lock()
	svc, ok := t.discovered[discoveredKey(address, v == VariantSecure)]
	t.mu.Unlock()
	if ok && len(svc.Addresses) > 0 {
		return net.JoinHostPort(svc.Addresses[0], strconv.Itoa(int(svc.Port))), nil
	}

	if _, _, err := net.SplitHostPort(address); err == nil {
		return address, nil
	}
	return net.JoinHostPort(address, strconv.Itoa(t.port(v))), nil
}

type tcpListener struct {
	ln           net.Listener
	svc          ServiceRecord
	helloTimeout time.Duration
	advertiser   discovery.Advertiser

	links  chan acceptedLink
	failed chan struct{} // closed when the accept loop ends
	err    error         // set before failed is closed
}

type acceptedLink struct {
	conn net.Conn
	peer Peer
}

func newTCPListener(ln net.Listener, svc ServiceRecord, helloTimeout time.Duration) *tcpListener {
	l := &tcpListener{
		ln:           ln,
		svc:          svc,
		helloTimeout: helloTimeout,
		links:        make(chan acceptedLink),
		failed:       make(chan struct{}),
	}
	go l.acceptLoop()
	return l
}

// acceptLoop hands every new connection to its own handshake goroutine, so
// a dialer that never sends its hello holds up nobody else.
func (l *tcpListener) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			l.err = err
			close(l.failed)
			return
		}
		go l.handshake(conn)
	}
}

// Accept returns the next connection that completed a matching hello.
// Connections with a bad or mismatched hello are closed and skipped.
func (l *tcpListener) Accept() (Link, Peer, error) {
	select {
	case <-l.failed:
		return nil, Peer{}, l.failure()
	default:
	}

	select {
	case a := <-l.links:
		return a.conn, a.peer, nil
	case <-l.failed:
		return nil, Peer{}, l.failure()
	}
}

func (l *tcpListener) failure() error {
	if errors.Is(l.err, net.ErrClosed) {
		return ErrListenerClosed
	}
	return l.err
}

func (l *tcpListener) handshake(conn net.Conn) {
	peer, err := l.readPeer(conn)
	if err != nil {
		conn.Close()
		return
	}

	select {
	case l.links <- acceptedLink{conn: conn, peer: peer}:
	case <-l.failed:
		conn.Close()
	}
}

// readPeer reads the hello and identifies the dialer. The peer address is
// the dialer's host with its advertised listening port, or the bare host
// when it sent none, so it can be dialed back.
func (l *tcpListener) readPeer(conn net.Conn) (Peer, error) {
	if err := conn.SetReadDeadline(time.Now().Add(l.helloTimeout)); err != nil {
		return Peer{}, err
	}

	id, h, err := readHello(conn)
	if err != nil {
		return Peer{}, err
	}
	if id != l.svc.ID {
		return Peer{}, fmt.Errorf("%w: got %s, want %s", ErrServiceMismatch, id, l.svc.ID)
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return Peer{}, err
	}

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return Peer{}, err
	}
	address := host
	if h.Port != 0 {
		address = net.JoinHostPort(host, strconv.Itoa(int(h.Port)))
	}
	return Peer{Address: address, Name: h.Name}, nil
}

// Addr returns the bound listening address.
func (l *tcpListener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *tcpListener) Close() error {
	if l.advertiser != nil {
		_ = l.advertiser.Stop(l.svc.ID)
	}
	return l.ln.Close()
}
