package netrange

import (
	"errors"
	"testing"
)

func TestParsePrefixValid(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"10.30.6.0", "10.30.6"},
		{"10.30.6.0/24", "10.30.6"},
		{"172.16.40.0", "172.16.40"},
		{"172.16.40.17/30", "172.16.40"},
		{"192.168.1.254/32", "192.168.1"},
		{" 10.0.0.0/8 ", "10.0.0"},
	}
	for _, tt := range tests {
		p, err := ParsePrefix(tt.spec)
		if err != nil {
			t.Errorf("ParsePrefix(%q) error = %v", tt.spec, err)
			continue
		}
		if p.String() != tt.want {
			t.Errorf("ParsePrefix(%q) = %q, want %q", tt.spec, p.String(), tt.want)
		}
	}
}

func TestParsePrefixInvalid(t *testing.T) {
	specs := []string{
		"",
		"10.30.6",
		"10.30.6.0.1",
		"10.30.x.0",
		"hostname.example.com",
		"10.30.6.256",
		"300.1.1.1",
		"10.30.6.0/",
		"10.30.6.0/33",
		"10.30.6.0/24/24",
		"10.30.6.0 extra",
	}
	for _, spec := range specs {
		if _, err := ParsePrefix(spec); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("ParsePrefix(%q) error = %v, want ErrInvalidSpec", spec, err)
		}
	}
}

func TestHostsEnumeration(t *testing.T) {
	p, err := ParsePrefix("10.30.6.0/24")
	if err != nil {
		t.Fatalf("ParsePrefix() error = %v", err)
	}

	hosts := p.Hosts()
	if len(hosts) != 254 {
		t.Fatalf("len(Hosts()) = %d, want 254", len(hosts))
	}
	if hosts[0] != "10.30.6.1" {
		t.Errorf("first host = %q, want %q", hosts[0], "10.30.6.1")
	}
	if hosts[253] != "10.30.6.254" {
		t.Errorf("last host = %q, want %q", hosts[253], "10.30.6.254")
	}

	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if seen[h] {
			t.Errorf("duplicate host %q", h)
		}
		seen[h] = true
	}
	if seen["10.30.6.0"] || seen["10.30.6.255"] {
		t.Error("network or broadcast address included in sweep range")
	}
}

func TestMaskDoesNotNarrowRange(t *testing.T) {
	// The mask is accepted syntactically but the sweep width is fixed at
	// .1-.254. A /30 input still enumerates the full range.
	p, err := ParsePrefix("10.30.6.0/30")
	if err != nil {
		t.Fatalf("ParsePrefix() error = %v", err)
	}
	if got := len(p.Hosts()); got != 254 {
		t.Errorf("len(Hosts()) = %d, want 254", got)
	}
}
