package transport

import (
	"context"
	"errors"
	"io"
)

// Transport errors.
var (
	ErrListenerClosed  = errors.New("listener closed")
	ErrNoListener      = errors.New("no listener for service")
	ErrServiceMismatch = errors.New("service record mismatch")
	ErrUnsupported     = errors.New("not supported")
	ErrInvalidAddress  = errors.New("invalid peer address")
)

// Peer identifies a remote device. It is only known after a link has been
// accepted or a connect target has been chosen.
type Peer struct {
	// Address is the transport-specific device handle (MAC, host:port, ...).
	Address string

	// Name is the human-readable device name (may be empty).
	Name string
}

// DisplayName returns the peer's name, or its address when no name is known.
func (p Peer) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Address
}

// String implements fmt.Stringer.
func (p Peer) String() string {
	if p.Name == "" || p.Name == p.Address {
		return p.Address
	}
	return p.Name + " (" + p.Address + ")"
}

// Link is an open bidirectional byte stream to exactly one peer.
type Link interface {
	io.Reader
	io.Writer
	io.Closer
}

// Listener is a passive endpoint accepting inbound links for one service.
type Listener interface {
	// Accept blocks until a peer connects or the listener is closed.
	Accept() (Link, Peer, error)

	// Close closes the endpoint. A pending Accept returns with an error.
	Close() error
}

// Transport is the radio capability the connection manager depends on.
type Transport interface {
	// Listen opens a listening endpoint tagged with the service record.
	Listen(svc ServiceRecord) (Listener, error)

	// Connect performs a single blocking connect attempt to the peer's
	// service. Cancelling ctx aborts a pending attempt.
	Connect(ctx context.Context, peer Peer, svc ServiceRecord) (Link, error)

	// CancelDiscovery stops any ongoing device discovery. Discovery and
	// connect attempts are mutually exclusive on most radio stacks.
	CancelDiscovery()
}

// Compile-time interface satisfaction checks.
var (
	_ Transport = (*MemoryTransport)(nil)
	_ Transport = (*TCPTransport)(nil)
	_ Transport = (*RFCOMMTransport)(nil)
)
