package model

import (
	"fmt"
	"strings"

	"github.com/netsync-network/netsync/pkg/canon"
)

// MACEntry is one row of a device's MAC address table. Unique within a
// device by (VLAN, MAC).
type MACEntry struct {
	MAC       string `json:"mac" mapstructure:"mac"`
	VLAN      int    `json:"vlan" mapstructure:"-"`
	Interface string `json:"interface" mapstructure:"interface"`
	Type      string `json:"type" mapstructure:"type"` // dynamic, static, sticky
	Hostname  string `json:"hostname" mapstructure:"-"`
	DeviceIP  string `json:"device_ip" mapstructure:"-"`
}

var macAliases = map[string][]string{
	"mac":       {"destination_address", "mac_address"},
	"interface": {"destination_port", "port", "ports", "name"},
	"vlan":      {"vlan_id"},
	"type":      {"entry_type", "learn_type"},
}

// MACEntryFromRaw builds a MACEntry from a parser row.
func MACEntryFromRaw(raw map[string]string) (*MACEntry, error) {
	r := resolveKeys(raw, macAliases)
	var e MACEntry
	if err := decodeRaw(r, &e); err != nil {
		return nil, err
	}
	e.MAC = canon.NormalizeMAC(e.MAC)
	e.VLAN = atoiLoose(r["vlan"])
	e.Interface = canon.LongName(e.Interface)
	e.Type = normalizeLearnType(e.Type)
	return &e, nil
}

// Key is the uniqueness key of the entry within a device.
func (e *MACEntry) Key() string {
	return fmt.Sprintf("%d/%s", e.VLAN, e.MAC)
}

func normalizeLearnType(s string) string {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(l, "sticky"):
		return "sticky"
	case strings.Contains(l, "static") || l == "s":
		return "static"
	case l == "" || strings.Contains(l, "dynamic") || l == "d" || l == "*":
		return "dynamic"
	}
	return l
}
