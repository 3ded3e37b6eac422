package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
	"github.com/google/uuid"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu      sync.Mutex
	servers map[uuid.UUID]*zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:  config,
		servers: make(map[uuid.UUID]*zeroconf.Server),
	}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	return selectInterfaces(a.config.Interface)
}

// Advertise starts advertising a link service.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *ServiceInfo) error {
	if info.Port == 0 {
		return fmt.Errorf("%w: port", ErrMissingRequired)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing for this service if any
	if server, exists := a.servers[info.ServiceID]; exists {
		server.Shutdown()
		delete(a.servers, info.ServiceID)
	}

	txtStrings := info.TXT()

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.InstanceName(),
		ServiceType,
		Domain,
		int(info.Port),
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register link service: %w", err)
	}

	a.servers[info.ServiceID] = server
	return nil
}

// Stop stops advertising the service with the given ID.
func (a *MDNSAdvertiser) Stop(serviceID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[serviceID]
	if !exists {
		return ErrNotFound
	}

	server.Shutdown()
	delete(a.servers, serviceID)
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, server := range a.servers {
		server.Shutdown()
		delete(a.servers, id)
	}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{
		config:  config,
		cancels: make(map[int]context.CancelFunc),
	}, nil
}

// Browse searches for link services.
// Services are aggregated by instance name - addresses from multiple interfaces
// are combined into a single entry.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *PeerService, error) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.cancels[id] = cancel
	b.mu.Unlock()

	out := make(chan *PeerService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		defer b.release(id)

		services := make(map[string]*PeerService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToPeer(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry.AddrIPv4, entry.AddrIPv6)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
	}()

	return out, nil
}

// FindByName searches for a service advertised by the named device.
func (b *MDNSBrowser) FindByName(ctx context.Context, deviceName string, secure bool) (*PeerService, error) {
	if _, ok := ctx.Deadline(); !ok && b.config.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, ErrNotFound
			}
			if svc.DeviceName == deviceName && svc.Secure == secure {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, cancel := range b.cancels {
		cancel()
		delete(b.cancels, id)
	}
}

func (b *MDNSBrowser) release(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cancel, ok := b.cancels[id]; ok {
		cancel()
		delete(b.cancels, id)
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if ifaces := selectInterfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	return opts
}

// selectInterfaces resolves a configured interface name. Returns nil for all
// interfaces, including when the name does not resolve.
func selectInterfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}

	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// entryToPeer converts a zeroconf entry to a PeerService.
func entryToPeer(entry *zeroconf.ServiceEntry) *PeerService {
	return peerFromRecord(entry.Instance, entry.HostName, entry.Port, entry.Text, entry.AddrIPv4, entry.AddrIPv6)
}

// peerFromRecord builds a PeerService from the parts of a resolved record.
// Returns nil when the TXT records do not describe a link service.
func peerFromRecord(instance, host string, port int, text []string, ipv4, ipv6 []net.IP) *PeerService {
	info, err := ParseServiceTXT(text)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(ipv4)+len(ipv6))
	for _, ip := range ipv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range ipv6 {
		addrs = append(addrs, ip.String())
	}

	return &PeerService{
		InstanceName: instance,
		Host:         host,
		Port:         uint16(port),
		Addresses:    addrs,
		ServiceID:    info.ServiceID,
		Secure:       info.Secure,
		DeviceName:   info.DeviceName,
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the given IPs from the address list.
func removeAddresses(addresses []string, ipv4, ipv6 []net.IP) []string {
	toRemove := make(map[string]bool)
	for _, ip := range ipv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range ipv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
