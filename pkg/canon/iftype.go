package canon

import "strings"

// Sentinel media-type values that mean "no transceiver information".
func mediaTypeKnown(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "not present":
		return false
	}
	return true
}

// netboxTypes is the closed set of NetBox physical types this system
// emits. Anything already in this set passes through the resolver.
var netboxTypes = map[string]bool{
	"virtual":           true,
	"lag":               true,
	"100base-tx":        true,
	"1000base-t":        true,
	"1000base-x-sfp":    true,
	"2.5gbase-t":        true,
	"10gbase-t":         true,
	"10gbase-x-sfpp":    true,
	"10gbase-lr":        true,
	"10gbase-sr":        true,
	"25gbase-x-sfp28":   true,
	"40gbase-x-qsfpp":   true,
	"40gbase-sr4":       true,
	"100gbase-x-qsfp28": true,
	"100gbase-x-qsfpdd": true,
}

// typeFromMedia maps a raw transceiver/optic string to a NetBox type.
// Checked top-down; the first matching rule wins.
func typeFromMedia(media string) string {
	m := strings.ToLower(media)
	switch {
	case strings.Contains(m, "100gbase") || strings.Contains(m, "qsfp28") || strings.Contains(m, "100g"):
		return "100gbase-x-qsfp28"
	case strings.Contains(m, "40g") && strings.Contains(m, "sr4"):
		return "40gbase-sr4"
	case strings.Contains(m, "40g") || strings.Contains(m, "qsfp"):
		return "40gbase-x-qsfpp"
	case strings.Contains(m, "25g") || strings.Contains(m, "sfp28"):
		return "25gbase-x-sfp28"
	case strings.Contains(m, "10g") && strings.Contains(m, "lr"):
		return "10gbase-lr"
	case strings.Contains(m, "10g") && strings.Contains(m, "sr"):
		return "10gbase-sr"
	case strings.Contains(m, "10gbase-t"):
		return "10gbase-t"
	case strings.Contains(m, "10g"):
		return "10gbase-x-sfpp"
	case strings.Contains(m, "1000base-t") || strings.Contains(m, "10/100/1000") || strings.Contains(m, "rj45"):
		return "1000base-t"
	case strings.Contains(m, "1000base") || strings.Contains(m, "glc") || strings.Contains(m, "sfp"):
		return "1000base-x-sfp"
	}
	return ""
}

// typeFromHardware maps a raw vendor hardware-type line to a NetBox type.
func typeFromHardware(hw string) string {
	h := strings.ToLower(hw)
	switch {
	case strings.Contains(h, "etherchannel") || strings.Contains(h, "port-channel") ||
		strings.Contains(h, "aggregate"):
		return "lag"
	case strings.Contains(h, "vlan") || strings.Contains(h, "loopback") ||
		strings.Contains(h, "tunnel") || strings.Contains(h, "svi"):
		return "virtual"
	case strings.Contains(h, "hundred"):
		return "100gbase-x-qsfp28"
	case strings.Contains(h, "forty"):
		return "40gbase-x-qsfpp"
	case strings.Contains(h, "twenty five") || strings.Contains(h, "twentyfive") || strings.Contains(h, "25g"):
		return "25gbase-x-sfp28"
	case strings.Contains(h, "ten gig") || strings.Contains(h, "ten-gig") ||
		strings.Contains(h, "tengig") || strings.Contains(h, "10 gig") || strings.Contains(h, "10g"):
		return "10gbase-x-sfpp"
	case strings.Contains(h, "fast ethernet") || strings.Contains(h, "fastethernet"):
		return "100base-tx"
	case strings.Contains(h, "gig"):
		return "1000base-t"
	}
	return ""
}

// typeFromSpeed is the last resort: speed in Mbps plus the name prefix.
func typeFromSpeed(speedMbps int, name string) string {
	long := LongName(name)
	switch {
	case strings.HasPrefix(long, "Vlan"), strings.HasPrefix(long, "Loopback"),
		strings.HasPrefix(long, "Tunnel"):
		return "virtual"
	case strings.HasPrefix(long, "Port-channel"), strings.HasPrefix(long, "AggregatePort"):
		return "lag"
	}
	switch {
	case speedMbps >= 100000:
		return "100gbase-x-qsfp28"
	case speedMbps >= 40000:
		return "40gbase-x-qsfpp"
	case speedMbps >= 25000:
		return "25gbase-x-sfp28"
	case speedMbps >= 10000:
		return "10gbase-x-sfpp"
	case speedMbps >= 1000:
		return "1000base-t"
	case speedMbps > 0:
		return "100base-tx"
	}
	return ""
}

// NetBoxInterfaceType resolves the NetBox physical type for an
// interface. Priority order, first match wins:
//
//  1. media type (the actual transceiver — a 10G LR optic in a 25G port
//     makes the port 10gbase-lr, not 25gbase-x-sfp28)
//  2. normalized port type
//  3. raw hardware-type line
//  4. speed plus name prefix
//  5. 1000base-t
func NetBoxInterfaceType(mediaType, portType, hardwareType string, speedMbps int, name string) string {
	if mediaTypeKnown(mediaType) {
		if t := typeFromMedia(mediaType); t != "" {
			return t
		}
	}
	if pt := strings.ToLower(strings.TrimSpace(portType)); pt != "" {
		if netboxTypes[pt] {
			return pt
		}
		if t := typeFromMedia(pt); t != "" {
			return t
		}
	}
	if hardwareType != "" {
		if t := typeFromHardware(hardwareType); t != "" {
			return t
		}
	}
	if t := typeFromSpeed(speedMbps, name); t != "" {
		return t
	}
	return "1000base-t"
}
