package model

import (
	"strconv"

	"github.com/netsync-network/netsync/pkg/canon"
)

// IPAddress is one address bound to an interface. WithPrefix is the
// canonical CIDR string; a dotted mask in the raw row is converted.
type IPAddress struct {
	Address      string `json:"address" mapstructure:"address"`
	Interface    string `json:"interface" mapstructure:"interface"`
	PrefixLength int    `json:"prefix_length" mapstructure:"-"`
	WithPrefix   string `json:"with_prefix" mapstructure:"-"`
	Hostname     string `json:"hostname" mapstructure:"-"`
}

var ipAliases = map[string][]string{
	"address":       {"ip_address", "ip", "ip_addr"},
	"interface":     {"port", "name", "intf"},
	"prefix_length": {"prefix", "mask", "netmask", "subnet_mask"},
}

// IPAddressFromRaw builds an IPAddress from a parser row.
func IPAddressFromRaw(raw map[string]string) (*IPAddress, error) {
	r := resolveKeys(raw, ipAliases)
	var a IPAddress
	if err := decodeRaw(r, &a); err != nil {
		return nil, err
	}
	a.Interface = canon.LongName(a.Interface)
	a.PrefixLength = canon.PrefixLength(r["prefix_length"])
	a.WithPrefix = canon.WithPrefix(a.Address, strconv.Itoa(a.PrefixLength))
	return &a, nil
}

// IPFromInterface derives the address record for an interface that
// carries an IP.
func IPFromInterface(intf *Interface) *IPAddress {
	if intf.IPAddress == "" {
		return nil
	}
	return &IPAddress{
		Address:      intf.IPAddress,
		Interface:    intf.Name,
		PrefixLength: intf.PrefixLength,
		WithPrefix:   canon.WithPrefix(intf.IPAddress, strconv.Itoa(intf.PrefixLength)),
		Hostname:     intf.Hostname,
	}
}
