package model

import (
	"strconv"
	"strings"

	"github.com/netsync-network/netsync/pkg/canon"
)

// SwitchportMode is the administrative 802.1Q mode of a port.
type SwitchportMode string

const (
	ModeAccess    SwitchportMode = "access"
	ModeTagged    SwitchportMode = "tagged"
	ModeTaggedAll SwitchportMode = "tagged-all"
	ModeUnset     SwitchportMode = ""
)

// Interface is the primary output of the interface collector. Name is
// always the canonical long form; ShortName is derived. Hostname and
// DeviceIP are filled by the collector, never by the parser.
type Interface struct {
	Name         string         `json:"name" mapstructure:"name"`
	ShortName    string         `json:"short_name" mapstructure:"-"`
	Hostname     string         `json:"hostname" mapstructure:"-"`
	DeviceIP     string         `json:"device_ip" mapstructure:"-"`
	AdminStatus  string         `json:"admin_status" mapstructure:"admin_status"`
	OperStatus   string         `json:"oper_status" mapstructure:"oper_status"`
	Description  string         `json:"description" mapstructure:"description"`
	IPAddress    string         `json:"ip_address" mapstructure:"ip_address"`
	PrefixLength int            `json:"prefix_length" mapstructure:"-"`
	MAC          string         `json:"mac" mapstructure:"mac"`
	SpeedMbps    int            `json:"speed_mbps" mapstructure:"-"`
	Duplex       string         `json:"duplex" mapstructure:"duplex"`
	MTU          int            `json:"mtu" mapstructure:"-"`
	Mode         SwitchportMode `json:"mode" mapstructure:"-"`
	UntaggedVLAN int            `json:"untagged_vlan" mapstructure:"-"`
	TaggedVLANs  []int          `json:"tagged_vlans" mapstructure:"-"`
	PortType     string         `json:"port_type" mapstructure:"port_type"`
	MediaType    string         `json:"media_type" mapstructure:"media_type"`
	HardwareType string         `json:"hardware_type" mapstructure:"hardware_type"`
	LAG          string         `json:"lag" mapstructure:"-"`

	// Raw is the alias-resolved parser row the record came from. Field
	// policies with a source rename read from it.
	Raw map[string]string `json:"-" mapstructure:"-"`
}

var interfaceAliases = map[string][]string{
	"name":          {"interface", "port", "intf"},
	"description":   {"descr", "desc", "port_desc"},
	"admin_status":  {"link_status", "admin_state", "status"},
	"oper_status":   {"protocol_status", "oper_state", "line_protocol"},
	"ip_address":    {"ip_addr", "ipaddr", "address"},
	"prefix_length": {"prefix", "mask", "netmask", "subnet_mask"},
	"mac":           {"mac_address", "hardware_address", "bia", "phys_address"},
	"speed":         {"bandwidth"},
	"media_type":    {"media", "transceiver_type"},
	"hardware_type": {"hardware"},
	"mtu":           {},
	"duplex":        {},
}

// InterfaceFromRaw builds an Interface from a parser row, resolving key
// aliases and canonicalizing the name, MAC, and prefix length.
func InterfaceFromRaw(raw map[string]string) (*Interface, error) {
	r := resolveKeys(raw, interfaceAliases)
	var intf Interface
	if err := decodeRaw(r, &intf); err != nil {
		return nil, err
	}
	intf.Name = canon.LongName(intf.Name)
	intf.ShortName = canon.ShortName(intf.Name)
	intf.MAC = canon.NormalizeMAC(intf.MAC)
	intf.AdminStatus = normalizeStatus(intf.AdminStatus)
	intf.OperStatus = normalizeStatus(intf.OperStatus)
	intf.SpeedMbps = atoiLoose(r["speed"])
	intf.MTU = atoiLoose(r["mtu"])
	if intf.IPAddress != "" {
		intf.PrefixLength = canon.PrefixLength(r["prefix_length"])
	}
	intf.Raw = r
	return &intf, nil
}

// normalizeStatus folds vendor status strings onto up/down.
func normalizeStatus(s string) string {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case l == "":
		return ""
	case strings.HasPrefix(l, "up") || l == "connected" || l == "enabled":
		return "up"
	case strings.Contains(l, "admin") && strings.Contains(l, "down"):
		return "down"
	case strings.HasPrefix(l, "down") || l == "notconnect" || l == "disabled" || l == "err-disabled":
		return "down"
	}
	return l
}

// NetBoxType resolves the NetBox physical type for this interface.
func (i *Interface) NetBoxType() string {
	return canon.NetBoxInterfaceType(i.MediaType, i.PortType, i.HardwareType, i.SpeedMbps, i.Name)
}

// WithPrefix returns the interface address in canonical CIDR form, or
// "" when the interface has no address.
func (i *Interface) WithPrefix() string {
	if i.IPAddress == "" {
		return ""
	}
	return canon.WithPrefix(i.IPAddress, strconv.Itoa(i.PrefixLength))
}
