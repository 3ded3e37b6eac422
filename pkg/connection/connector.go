package connection

import (
	"context"
	"sync"

	"github.com/trackingkind/linkd/pkg/transport"
)

// connector performs a single outbound connect attempt.
type connector struct {
	m       *Manager
	peer    transport.Peer
	variant transport.Variant

	ctx      context.Context
	cancelFn context.CancelFunc

	mu        sync.Mutex
	link      transport.Link
	cancelled bool
}

func newConnector(m *Manager, peer transport.Peer, variant transport.Variant) *connector {
	ctx, cancel := context.WithCancel(context.Background())
	return &connector{
		m:        m,
		peer:     peer,
		variant:  variant,
		ctx:      ctx,
		cancelFn: cancel,
	}
}

func (c *connector) run() {
	// Discovery slows a connect down considerably on radio stacks.
	c.m.transport.CancelDiscovery()

	link, err := c.m.transport.Connect(c.ctx, c.peer, transport.ServiceFor(c.variant))
	if err != nil {
		c.m.connectionFailed(c, err)
		return
	}

	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		closeQuietly(c.m, link, "connect link")
		return
	}
	c.link = link
	c.mu.Unlock()

	c.m.debugLog("link established", "peer", c.peer.String(), "variant", c.variant.String())
	c.m.connected(link, c.peer, c.variant, c)
}

// cancel aborts a pending attempt and closes a link already obtained.
func (c *connector) cancel() {
	c.mu.Lock()
	c.cancelled = true
	link := c.link
	c.link = nil
	c.mu.Unlock()

	c.cancelFn()
	if link != nil {
		closeQuietly(c.m, link, "connect link")
	}
}

// release drops the link reference after it was handed to a pump.
func (c *connector) release() {
	c.mu.Lock()
	c.link = nil
	c.mu.Unlock()
	c.cancelFn()
}
