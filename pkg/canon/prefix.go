package canon

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// PrefixLength converts a dotted subnet mask or a numeric prefix string
// to a prefix length. Unknown or invalid input yields 32.
func PrefixLength(s string) int {
	s = strings.TrimSpace(strings.TrimPrefix(s, "/"))
	if s == "" {
		return 32
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= 128 {
			return n
		}
		return 32
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return 32
	}
	mask := net.IPMask(ip.To4())
	if mask == nil {
		mask = net.IPMask(ip.To16())
	}
	ones, bits := mask.Size()
	if bits == 0 {
		// non-contiguous mask
		return 32
	}
	return ones
}

// WithPrefix renders the canonical CIDR string for an address and a
// mask or prefix in any accepted form ("10.0.0.1", "255.255.255.0" →
// "10.0.0.1/24").
func WithPrefix(address, maskOrPrefix string) string {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return ""
	}
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		// already CIDR; re-derive to canonicalize
		if maskOrPrefix == "" {
			maskOrPrefix = addr[i+1:]
		}
		addr = addr[:i]
	}
	return fmt.Sprintf("%s/%d", addr, PrefixLength(maskOrPrefix))
}
