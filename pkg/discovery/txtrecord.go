package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// TXT returns the DNS-SD TXT strings ("key=value") describing the service,
// sorted by key.
func (i *ServiceInfo) TXT() []string {
	variant := VariantInsecure
	if i.Secure {
		variant = VariantSecure
	}

	txt := []string{
		TXTKeyServiceID + "=" + i.ServiceID.String(),
		TXTKeyVariant + "=" + variant,
	}
	if i.DeviceName != "" {
		txt = append(txt, TXTKeyDeviceName+"="+i.DeviceName)
	}
	slices.Sort(txt)
	return txt
}

// ParseServiceTXT reads the TXT strings of a link service. Unknown keys are
// ignored. The port is not part of the TXT strings and is left zero.
func ParseServiceTXT(txt []string) (*ServiceInfo, error) {
	values := make(map[string]string, len(txt))
	for _, kv := range txt {
		key, value, _ := strings.Cut(kv, "=")
		if key != "" {
			values[key] = value
		}
	}

	sid, ok := values[TXTKeyServiceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyServiceID)
	}
	id, err := uuid.Parse(sid)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service ID %q", ErrInvalidTXTRecord, sid)
	}

	info := &ServiceInfo{ServiceID: id, DeviceName: values[TXTKeyDeviceName]}
	switch variant, ok := values[TXTKeyVariant]; {
	case !ok:
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVariant)
	case variant == VariantSecure:
		info.Secure = true
	case variant == VariantInsecure:
	default:
		return nil, fmt.Errorf("%w: invalid variant %q", ErrInvalidTXTRecord, variant)
	}
	return info, nil
}
