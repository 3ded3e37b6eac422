package connection

import (
	"fmt"
	"sync"

	"github.com/trackingkind/linkd/pkg/transport"
)

// pump moves bytes over an established link.
type pump struct {
	m       *Manager
	link    transport.Link
	peer    transport.Peer
	variant transport.Variant
	connID  string

	writeMu sync.Mutex

	mu        sync.Mutex
	cancelled bool
	closeOnce sync.Once
}

func newPump(m *Manager, link transport.Link, peer transport.Peer, variant transport.Variant, connID string) *pump {
	return &pump{
		m:       m,
		link:    link,
		peer:    peer,
		variant: variant,
		connID:  connID,
	}
}

// run reads until the link fails or the pump is cancelled. Every read gets
// its own buffer, so handlers may keep the data.
func (p *pump) run() {
	for {
		buf := make([]byte, p.m.config.BufferSize)
		n, err := p.link.Read(buf)
		if n > 0 {
			p.m.dataReceived(p, buf[:n])
		}
		if err != nil {
			if !p.isCancelled() {
				p.m.connectionLost(p, err)
			}
			return
		}
	}
}

// write performs one blocking write. Writes are serialized.
func (p *pump) write(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	n, err := p.link.Write(data)
	if err != nil {
		if !p.isCancelled() {
			p.m.sendFailed(p, err)
		}
		return fmt.Errorf("write to %s: %w", p.peer.Address, err)
	}

	p.m.dataSent(p, data[:n])
	return nil
}

// cancel closes the link, which unblocks a pending Read.
func (p *pump) cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		closeQuietly(p.m, p.link, "link")
	})
}

func (p *pump) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}
