// Package netrange resolves a network specifier into the fixed set of host
// addresses covered by a sweep.
package netrange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSpec is returned when the network specifier is not a dotted quad
// with an optional CIDR suffix.
var ErrInvalidSpec = errors.New("invalid network spec")

// specPattern accepts "A.B.C.D" or "A.B.C.D/mask".
var specPattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})(?:/(\d{1,2}))?$`)

// Prefix is the first three octets of the scanned network. A sweep always
// covers prefix.1 through prefix.254, regardless of any mask supplied in the
// spec (the mask is validated syntactically but does not narrow the range).
type Prefix struct {
	base string
}

// ParsePrefix validates a network spec and derives the sweep prefix.
// Validation is synchronous and has no side effects; a malformed spec fails
// here before any probing can start.
func ParsePrefix(spec string) (Prefix, error) {
	m := specPattern.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return Prefix{}, fmt.Errorf("%w: %q (want \"10.30.6.0\" or \"10.30.6.0/24\")", ErrInvalidSpec, spec)
	}

	for _, octet := range m[1:5] {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return Prefix{}, fmt.Errorf("%w: octet %q out of range in %q", ErrInvalidSpec, octet, spec)
		}
	}

	if m[5] != "" {
		bits, err := strconv.Atoi(m[5])
		if err != nil || bits > 32 {
			return Prefix{}, fmt.Errorf("%w: mask /%s out of range in %q", ErrInvalidSpec, m[5], spec)
		}
	}

	return Prefix{base: strings.Join(m[1:4], ".")}, nil
}

// String returns the dotted three-octet base, e.g. "10.30.6".
func (p Prefix) String() string {
	return p.base
}

// Host returns the address for the given last octet, e.g. Host(5) = "10.30.6.5".
func (p Prefix) Host(lastOctet int) string {
	return fmt.Sprintf("%s.%d", p.base, lastOctet)
}

// Hosts enumerates the full sweep range, prefix.1 through prefix.254.
// Network (.0) and broadcast (.255) addresses are never included.
func (p Prefix) Hosts() []string {
	hosts := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		hosts = append(hosts, p.Host(i))
	}
	return hosts
}
