package transport

import "github.com/google/uuid"

// Variant selects the secure or insecure channel configuration.
type Variant uint8

const (
	// VariantSecure requires an authenticated, encrypted channel where the
	// underlying stack supports it.
	VariantSecure Variant = iota

	// VariantInsecure accepts unauthenticated channels.
	VariantInsecure
)

// String returns the variant name as used in logs.
func (v Variant) String() string {
	switch v {
	case VariantSecure:
		return "Secure"
	case VariantInsecure:
		return "Insecure"
	default:
		return "Unknown"
	}
}

// ServiceRecord describes a listening service: a fixed 128-bit identifier
// and a display name.
type ServiceRecord struct {
	ID      uuid.UUID
	Name    string
	Variant Variant
}

// Deployment constants for the two channel variants.
var (
	SecureService = ServiceRecord{
		ID:      uuid.MustParse("434ca063-3a16-465f-a8eb-ab59d75fdd8e"),
		Name:    "BluetoothConnectionSecure",
		Variant: VariantSecure,
	}

	InsecureService = ServiceRecord{
		ID:      uuid.MustParse("953ef910-3861-4b53-bdd2-8db5ba9fcc72"),
		Name:    "BluetoothConnectionInsecure",
		Variant: VariantInsecure,
	}
)

// ServiceFor returns the service record of the given variant.
func ServiceFor(v Variant) ServiceRecord {
	if v == VariantSecure {
		return SecureService
	}
	return InsecureService
}

// LookupService returns the service record with the given ID.
func LookupService(id uuid.UUID) (ServiceRecord, bool) {
	switch id {
	case SecureService.ID:
		return SecureService, true
	case InsecureService.ID:
		return InsecureService, true
	default:
		return ServiceRecord{}, false
	}
}
