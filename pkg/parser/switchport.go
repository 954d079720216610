package parser

import (
	"strings"
)

// "show interfaces switchport" is "Name: X" blocks of "Key: value"
// lines on every supported platform. The row keeps the administrative
// and operational modes separate; mode derivation happens in the
// normalizer because a down port must still surface its configured
// mode.
func parseSwitchport(raw string) []Row {
	blocks := splitBlocks(raw, func(line string) bool {
		return strings.HasPrefix(line, "Name:")
	})

	var rows []Row
	for _, block := range blocks {
		fields := kv(block)
		row := Row{"interface": fields["name"]}
		if v, ok := fields["administrative_mode"]; ok {
			row["admin_mode"] = v
		}
		if v, ok := fields["operational_mode"]; ok {
			row["oper_mode"] = v
		}
		if v, ok := fields["access_mode_vlan"]; ok {
			row["access_vlan"] = firstToken(v)
		}
		if v, ok := fields["trunking_native_mode_vlan"]; ok {
			row["native_vlan"] = firstToken(v)
		}
		if v, ok := fields["trunking_vlans_enabled"]; ok {
			row["trunking_vlans"] = v
		} else if v, ok := fields["trunking_vlans_allowed"]; ok {
			row["trunking_vlans"] = v
		}
		if row["interface"] != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

// firstToken strips trailing annotations: "1 (default)" → "1".
func firstToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func init() {
	register("ios", "show interfaces switchport", parseSwitchport)
	register("eos", "show interfaces switchport", parseSwitchport)
	register("nxos", "show interface switchport", parseSwitchport)
	register("qtech", "show interface switchport", parseSwitchport)
}
