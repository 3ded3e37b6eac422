package transport

// Default RFCOMM channels for the two service variants.
const (
	DefaultSecureChannel   = 3
	DefaultInsecureChannel = 4
)

// RFCOMMConfig configures an RFCOMMTransport.
type RFCOMMConfig struct {
	// Adapter is the local adapter address (AA:BB:CC:DD:EE:FF). Empty binds
	// to any adapter.
	Adapter string

	// SecureChannel and InsecureChannel are the RFCOMM channels of the two
	// variants, used both for listening and dialing.
	SecureChannel   uint8
	InsecureChannel uint8
}

func (c *RFCOMMConfig) applyDefaults() {
	if c.SecureChannel == 0 {
		c.SecureChannel = DefaultSecureChannel
	}
	if c.InsecureChannel == 0 {
		c.InsecureChannel = DefaultInsecureChannel
	}
}

func (c *RFCOMMConfig) channel(v Variant) uint8 {
	if v == VariantSecure {
		return c.SecureChannel
	}
	return c.InsecureChannel
}
