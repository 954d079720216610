package parser

import (
	"regexp"
	"strings"
)

// LLDP "show lldp neighbors detail" output is a sequence of
// dash-separated blocks of "Key: value" lines. The shape is shared by
// IOS, NX-OS, EOS, and QTech; only minor key spellings differ and the
// kv() helper flattens those.

var lldpMgmtIP = regexp.MustCompile(`(?im)^\s*IP(?:v4)?(?:\s+[Aa]ddress)?:\s*(\S+)`)

func parseLLDPDetail(raw string) []Row {
	blocks := splitBlocks(raw, func(line string) bool {
		return strings.HasPrefix(line, "----")
	})
	if len(blocks) == 0 {
		// some platforms print the first block without a leading divider
		if strings.Contains(raw, "Local Intf") || strings.Contains(raw, "System Name") {
			blocks = []string{raw}
		}
	}

	var rows []Row
	for _, block := range blocks {
		fields := kv(block)
		row := Row{}
		if v, ok := fields["local_intf"]; ok {
			row["local_interface"] = v
		} else if v, ok := fields["local_interface"]; ok {
			row["local_interface"] = v
		} else if v, ok := fields["interface"]; ok {
			row["local_interface"] = v
		}
		if v, ok := fields["system_name"]; ok {
			row["system_name"] = v
		}
		if v, ok := fields["chassis_id"]; ok {
			row["chassis_id"] = v
		}
		if v, ok := fields["port_id"]; ok {
			row["port_id"] = v
		}
		if v, ok := fields["system_description"]; ok {
			row["system_description"] = v
		}
		if v, ok := fields["system_capabilities"]; ok {
			row["capabilities"] = v
		}
		if m := lldpMgmtIP.FindStringSubmatch(block); m != nil {
			row["management_ip"] = m[1]
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// CDP "show cdp neighbors detail" blocks.
var (
	cdpDevice    = regexp.MustCompile(`(?im)^Device ID:\s*(\S+)`)
	cdpIP        = regexp.MustCompile(`(?im)^\s*IP(?:v4)? address:\s*(\S+)`)
	cdpPlatform  = regexp.MustCompile(`(?im)^Platform:\s*([^,]+),\s*Capabilities:\s*(.+)$`)
	cdpIntfPorts = regexp.MustCompile(`(?im)^Interface:\s*([^,]+),\s*Port ID \(outgoing port\):\s*(\S+)`)
)

func parseCDPDetail(raw string) []Row {
	blocks := splitBlocks(raw, func(line string) bool {
		return strings.HasPrefix(line, "----")
	})
	if len(blocks) == 0 && strings.Contains(raw, "Device ID:") {
		blocks = []string{raw}
	}

	var rows []Row
	for _, block := range blocks {
		row := Row{}
		if m := cdpDevice.FindStringSubmatch(block); m != nil {
			row["device_id"] = m[1]
		}
		if m := cdpIP.FindStringSubmatch(block); m != nil {
			row["management_ip"] = m[1]
		}
		if m := cdpPlatform.FindStringSubmatch(block); m != nil {
			row["platform_string"] = strings.TrimSpace(m[1])
			row["capabilities"] = strings.TrimSpace(m[2])
		}
		if m := cdpIntfPorts.FindStringSubmatch(block); m != nil {
			row["local_interface"] = strings.TrimSpace(m[1])
			row["neighbor_interface"] = m[2]
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func init() {
	for _, family := range []string{"ios", "nxos", "eos", "qtech"} {
		register(family, "show lldp neighbors detail", parseLLDPDetail)
	}
	register("ios", "show cdp neighbors detail", parseCDPDetail)
	register("nxos", "show cdp neighbors detail", parseCDPDetail)
}
