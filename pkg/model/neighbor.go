package model

import (
	"net"
	"strings"

	"github.com/netsync-network/netsync/pkg/canon"
)

// NeighborType classifies what the remote device identified itself as.
type NeighborType string

const (
	NeighborByHostname NeighborType = "hostname"
	NeighborByMAC      NeighborType = "mac"
	NeighborByIP       NeighborType = "ip"
	NeighborUnknown    NeighborType = "unknown"
)

// Neighbor is one LLDP or CDP adjacency.
type Neighbor struct {
	LocalInterface string       `json:"local_interface" mapstructure:"local_interface"`
	RemoteHostname string       `json:"remote_hostname" mapstructure:"remote_hostname"`
	RemotePort     string       `json:"remote_port" mapstructure:"remote_port"`
	ChassisMAC     string       `json:"chassis_mac" mapstructure:"chassis_mac"`
	MgmtIP         string       `json:"mgmt_ip" mapstructure:"mgmt_ip"`
	Platform       string       `json:"platform" mapstructure:"platform"`
	Capabilities   string       `json:"capabilities" mapstructure:"capabilities"`
	Protocol       string       `json:"protocol" mapstructure:"-"` // lldp or cdp
	Type           NeighborType `json:"neighbor_type" mapstructure:"-"`
	Hostname       string       `json:"hostname" mapstructure:"-"`
}

var neighborAliases = map[string][]string{
	"local_interface": {"local_port", "interface", "local_intf"},
	"remote_hostname": {"neighbor", "neighbor_name", "system_name", "device_id"},
	"remote_port":     {"neighbor_interface", "port_id", "neighbor_port_id", "remote_interface"},
	"chassis_mac":     {"chassis_id"},
	"mgmt_ip":         {"management_ip", "mgmt_address", "management_address", "ip_address"},
	"platform":        {"system_description", "platform_string"},
	"capabilities":    {"capability"},
}

// NeighborFromRaw builds a Neighbor from a parser row. The protocol is
// supplied by the collector since the same template shape serves both.
func NeighborFromRaw(raw map[string]string, protocol string) (*Neighbor, error) {
	r := resolveKeys(raw, neighborAliases)
	var n Neighbor
	if err := decodeRaw(r, &n); err != nil {
		return nil, err
	}
	n.Protocol = protocol
	n.LocalInterface = canon.LongName(n.LocalInterface)
	n.RemoteHostname = trimDomain(n.RemoteHostname)
	if mac := canon.NormalizeMAC(n.ChassisMAC); mac != "" {
		n.ChassisMAC = mac
	}
	n.Type = classifyNeighbor(&n)
	return &n, nil
}

// classifyNeighbor decides what identity the neighbor advertised: a
// real hostname, a bare chassis MAC, a bare IP, or nothing usable.
func classifyNeighbor(n *Neighbor) NeighborType {
	name := strings.TrimSpace(n.RemoteHostname)
	switch {
	case name == "":
		if n.ChassisMAC != "" {
			return NeighborByMAC
		}
		if n.MgmtIP != "" {
			return NeighborByIP
		}
		return NeighborUnknown
	case canon.NormalizeMAC(name) != "":
		return NeighborByMAC
	case net.ParseIP(name) != nil:
		return NeighborByIP
	}
	return NeighborByHostname
}

// trimDomain cuts the DNS suffix off advertised hostnames
// ("sw1.corp.example.com" → "sw1"). Names that parse as IPs or MACs
// are left alone.
func trimDomain(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || net.ParseIP(name) != nil || canon.NormalizeMAC(name) != "" {
		return name
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
