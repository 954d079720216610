// Package canon holds the identifier canonicalizers: MAC address forms,
// interface-name maps, NetBox interface types, prefix lengths, and slugs.
// Everything here is a pure string transform over closed lookup tables.
package canon

import "strings"

// MACStyle selects an output format for FormatMAC.
type MACStyle string

const (
	MACRaw    MACStyle = "raw"    // aabbccddeeff
	MACIEEE   MACStyle = "ieee"   // aa:bb:cc:dd:ee:ff
	MACNetBox MACStyle = "netbox" // AA:BB:CC:DD:EE:FF
	MACCisco  MACStyle = "cisco"  // aabb.ccdd.eeff
	MACUnix   MACStyle = "unix"   // aa-bb-cc-dd-ee-ff
)

// NormalizeMAC strips the separators ":", "-", "." and spaces and
// lowercases. A value that does not leave exactly 12 hex digits is
// invalid and normalizes to the empty string.
func NormalizeMAC(s string) string {
	var b strings.Builder
	b.Grow(12)
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ':' || r == '-' || r == '.' || r == ' ':
			// separator
		case (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'):
			b.WriteRune(r)
		default:
			return ""
		}
	}
	if b.Len() != 12 {
		return ""
	}
	return b.String()
}

// FormatMAC renders a MAC in the requested style. The input is
// normalized first; invalid input yields the empty string.
func FormatMAC(s string, style MACStyle) string {
	mac := NormalizeMAC(s)
	if mac == "" {
		return ""
	}
	switch style {
	case MACIEEE:
		return joinGroups(mac, 2, ":")
	case MACNetBox:
		return strings.ToUpper(joinGroups(mac, 2, ":"))
	case MACCisco:
		return joinGroups(mac, 4, ".")
	case MACUnix:
		return joinGroups(mac, 2, "-")
	default:
		return mac
	}
}

func joinGroups(s string, size int, sep string) string {
	groups := make([]string, 0, len(s)/size)
	for i := 0; i < len(s); i += size {
		groups = append(groups, s[i:i+size])
	}
	return strings.Join(groups, sep)
}
