//go:build !linux

package transport

import "context"

// RFCOMMTransport is only available on linux.
type RFCOMMTransport struct{}

// NewRFCOMMTransport returns ErrUnsupported on this platform.
func NewRFCOMMTransport(config RFCOMMConfig) (*RFCOMMTransport, error) {
	return nil, ErrUnsupported
}

func (t *RFCOMMTransport) Listen(svc ServiceRecord) (Listener, error) {
	return nil, ErrUnsupported
}

func (t *RFCOMMTransport) Connect(ctx context.Context, peer Peer, svc ServiceRecord) (Link, error) {
	return nil, ErrUnsupported
}

func (t *RFCOMMTransport) CancelDiscovery() {}
