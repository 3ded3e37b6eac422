package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse searches for link services. The returned channel yields each
	// instance once and is closed when the context is cancelled.
	Browse(ctx context.Context) (<-chan *PeerService, error)

	// FindByName searches for a service advertised by the named device with
	// the given variant. Returns when found or when the context is done.
	FindByName(ctx context.Context, deviceName string, secure bool) (*PeerService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for FindByName when the context
	// has no deadline.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}
