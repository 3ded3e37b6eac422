package discovery

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"
)

func TestServiceTXTRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		info ServiceInfo
		want []string
	}{
		{
			"Secure",
			ServiceInfo{ServiceID: uuid.MustParse("434ca063-3a16-465f-a8eb-ab59d75fdd8e"), Secure: true, DeviceName: "Device-A"},
			[]string{"DN=Device-A", "sid=434ca063-3a16-465f-a8eb-ab59d75fdd8e", "var=secure"},
		},
		{
			"Insecure",
			ServiceInfo{ServiceID: uuid.MustParse("953ef910-3861-4b53-bdd2-8db5ba9fcc72"), DeviceName: "Device-B"},
			[]string{"DN=Device-B", "sid=953ef910-3861-4b53-bdd2-8db5ba9fcc72", "var=insecure"},
		},
		{
			"NoName",
			ServiceInfo{ServiceID: uuid.MustParse("953ef910-3861-4b53-bdd2-8db5ba9fcc72")},
			[]string{"sid=953ef910-3861-4b53-bdd2-8db5ba9fcc72", "var=insecure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt := tt.info.TXT()
			if !slices.Equal(txt, tt.want) {
				t.Errorf("TXT() = %v, want %v", txt, tt.want)
			}

			got, err := ParseServiceTXT(txt)
			if err != nil {
				t.Fatalf("ParseServiceTXT() error = %v", err)
			}
			if *got != tt.info {
				t.Errorf("ParseServiceTXT() = %+v, want %+v", *got, tt.info)
			}
		})
	}
}

func TestParseServiceTXTTolerance(t *testing.T) {
	id := uuid.New()
	got, err := ParseServiceTXT([]string{"", "flag", "sid=" + id.String(), "var=secure", "DN=a=b", "extra=1"})
	if err != nil {
		t.Fatalf("ParseServiceTXT() error = %v", err)
	}
	if got.ServiceID != id || !got.Secure || got.DeviceName != "a=b" {
		t.Errorf("ParseServiceTXT() = %+v", got)
	}
}

func TestParseServiceTXTInvalid(t *testing.T) {
	tests := []struct {
		name    string
		txt     []string
		wantErr error
	}{
		{"MissingServiceID", []string{"var=secure"}, ErrMissingRequired},
		{"BadServiceID", []string{"sid=nope", "var=secure"}, ErrInvalidTXTRecord},
		{"MissingVariant", []string{"sid=" + uuid.NewString()}, ErrMissingRequired},
		{"BadVariant", []string{"sid=" + uuid.NewString(), "var=maybe"}, ErrInvalidTXTRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseServiceTXT(tt.txt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseServiceTXT() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInstanceName(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnop"

	tests := []struct {
		name string
		info ServiceInfo
		want string
	}{
		{"Secure", ServiceInfo{DeviceName: "pixel", Secure: true}, "pixel-sec"},
		{"Insecure", ServiceInfo{DeviceName: "pixel"}, "pixel-ins"},
		{"Default", ServiceInfo{Secure: true}, "linkd-sec"},
		{"Truncated", ServiceInfo{DeviceName: long}, long[:MaxInstanceNameLen-4] + "-ins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.InstanceName()
			if got != tt.want {
				t.Errorf("InstanceName() = %q, want %q", got, tt.want)
			}
			if len(got) > MaxInstanceNameLen {
				t.Errorf("InstanceName() is %d bytes, limit %d", len(got), MaxInstanceNameLen)
			}
		})
	}
}
