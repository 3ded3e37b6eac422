//go:build linux

package transport

import (
	"errors"
	"testing"
)

func TestParseBDAddr(t *testing.T) {
	addr, err := parseBDAddr("00:1A:7D:DA:71:13")
	if err != nil {
		t.Fatalf("parseBDAddr: %v", err)
	}
	want := [6]uint8{0x13, 0x71, 0xDA, 0x7D, 0x1A, 0x00}
	if addr != want {
		t.Errorf("parseBDAddr = %X, want %X", addr, want)
	}
	if got := formatBDAddr(addr); got != "00:1A:7D:DA:71:13" {
		t.Errorf("formatBDAddr = %q", got)
	}
}

func TestParseBDAddrInvalid(t *testing.T) {
	for _, s := range []string{"", "device-a", "00:1A:7D:DA:71", "00:00:5e:00:53:00:00:01"} {
		if _, err := parseBDAddr(s); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("parseBDAddr(%q) error = %v, want %v", s, err, ErrInvalidAddress)
		}
	}
}

func TestRFCOMMConfigDefaults(t *testing.T) {
	tr, err := NewRFCOMMTransport(RFCOMMConfig{InsecureChannel: 9})
	if err != nil {
		t.Fatalf("NewRFCOMMTransport: %v", err)
	}
	if got := tr.config.channel(VariantSecure); got != DefaultSecureChannel {
		t.Errorf("secure channel = %d, want %d", got, DefaultSecureChannel)
	}
	if got := tr.config.channel(VariantInsecure); got != 9 {
		t.Errorf("insecure channel = %d, want 9", got)
	}

	if _, err := NewRFCOMMTransport(RFCOMMConfig{Adapter: "nope"}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("NewRFCOMMTransport(bad adapter) error = %v", err)
	}
}
