package transport

import (
	"testing"

	"github.com/google/uuid"
)

func TestVariantString(t *testing.T) {
	tests := []struct {
		v    Variant
		want string
	}{
		{VariantSecure, "Secure"},
		{VariantInsecure, "Insecure"},
		{Variant(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("Variant(%d).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestServiceRecords(t *testing.T) {
	if SecureService.ID == InsecureService.ID {
		t.Fatal("secure and insecure services share an ID")
	}
	if ServiceFor(VariantSecure) != SecureService {
		t.Error("ServiceFor(VariantSecure) != SecureService")
	}
	if ServiceFor(VariantInsecure) != InsecureService {
		t.Error("ServiceFor(VariantInsecure) != InsecureService")
	}

	svc, ok := LookupService(uuid.MustParse("953ef910-3861-4b53-bdd2-8db5ba9fcc72"))
	if !ok || svc.Variant != VariantInsecure {
		t.Errorf("LookupService(insecure) = %+v, %v", svc, ok)
	}
	if _, ok := LookupService(uuid.New()); ok {
		t.Error("LookupService(random) found a service")
	}
}

func TestPeerDisplayName(t *testing.T) {
	if got := (Peer{Address: "AA:BB", Name: "Device-A"}).DisplayName(); got != "Device-A" {
		t.Errorf("DisplayName() = %q, want Device-A", got)
	}
	if got := (Peer{Address: "AA:BB"}).DisplayName(); got != "AA:BB" {
		t.Errorf("DisplayName() = %q, want AA:BB", got)
	}
}
