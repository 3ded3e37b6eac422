package discovery

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of a listening link service.
	ServiceType = "_linkd._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record key constants.
const (
	TXTKeyServiceID  = "sid" // Service record UUID
	TXTKeyVariant    = "var" // "secure" or "insecure"
	TXTKeyDeviceName = "DN"  // Device name (optional)
)

// TXT record variant values.
const (
	VariantSecure   = "secure"
	VariantInsecure = "insecure"
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL for advertisements.
	DefaultTTL = 120 * time.Second
)

// MaxInstanceNameLen is the DNS label limit.
const MaxInstanceNameLen = 63

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required field")
	ErrNotFound         = errors.New("service not found")
)

// ServiceInfo describes a listening link service to advertise.
type ServiceInfo struct {
	// ServiceID is the service record UUID the listener accepts.
	ServiceID uuid.UUID

	// Secure reports whether this is the secure variant.
	Secure bool

	// DeviceName is the local device name shown to browsing peers.
	DeviceName string

	// Port is the TCP port the listener is bound to.
	Port uint16
}

// InstanceName returns the DNS-SD instance name for the service.
func (i *ServiceInfo) InstanceName() string {
	name := i.DeviceName
	if name == "" {
		name = "linkd"
	}

	suffix := "-ins"
	if i.Secure {
		suffix = "-sec"
	}

	if len(name)+len(suffix) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen-len(suffix)]
	}
	return name + suffix
}

// PeerService is a link service discovered on the network.
type PeerService struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// Host is the advertised host name.
	Host string

	// Port is the advertised TCP port.
	Port uint16

	// Addresses are the IP addresses the service was seen on.
	Addresses []string

	// ServiceID is the advertised service record UUID.
	ServiceID uuid.UUID

	// Secure reports whether the advertised service is the secure variant.
	Secure bool

	// DeviceName is the advertised device name, if any.
	DeviceName string
}
