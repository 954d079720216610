package parser

import (
	"regexp"
	"strings"
)

// "show inventory" pairs a NAME/DESCR line with a PID/VID/SN line.
var (
	invName = regexp.MustCompile(`(?i)NAME:\s*"([^"]*)"\s*,\s*DESCR:\s*"([^"]*)"`)
	invPID  = regexp.MustCompile(`(?i)PID:\s*([^,\s]*)\s*,\s*VID:\s*([^,\s]*)\s*,\s*SN:\s*(\S*)`)
)

func parseInventory(raw string) []Row {
	var rows []Row
	var cur Row
	for _, line := range strings.Split(raw, "\n") {
		if m := invName.FindStringSubmatch(line); m != nil {
			cur = Row{"name": m[1], "descr": m[2]}
			continue
		}
		if m := invPID.FindStringSubmatch(line); m != nil && cur != nil {
			cur["pid"] = m[1]
			cur["vid"] = m[2]
			cur["sn"] = m[3]
			rows = append(rows, cur)
			cur = nil
		}
	}
	return rows
}

// "show interface transceiver" (NX-OS, QTech): per-interface indented
// detail blocks. Interfaces without an optic report "transceiver is
// not present" and still emit a row so the collector can discard them
// knowingly.
var xcvrField = regexp.MustCompile(`(?i)^\s+(type|name|part number|serial number|revision)\s+is\s+(.+?)\s*$`)

func parseTransceiver(raw string) []Row {
	blocks := splitBlocks(raw, func(line string) bool {
		return line != "" && line[0] != ' ' && line[0] != '\t' &&
			!strings.Contains(line, " is ") && strings.ContainsAny(line, "0123456789")
	})

	var rows []Row
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		row := Row{"interface": strings.TrimSpace(lines[0])}
		present := true
		for _, line := range lines[1:] {
			if strings.Contains(line, "transceiver is not present") {
				present = false
			}
			if m := xcvrField.FindStringSubmatch(line); m != nil {
				key := strings.ReplaceAll(strings.ToLower(m[1]), " ", "_")
				row[key] = strings.TrimSpace(m[2])
			}
		}
		if !present {
			row["type"] = "not present"
		}
		if len(row) > 1 || !present {
			rows = append(rows, row)
		}
	}
	return rows
}

func init() {
	register("ios", "show inventory", parseInventory)
	register("nxos", "show inventory", parseInventory)
	register("eos", "show inventory", parseInventory)
	register("nxos", "show interface transceiver", parseTransceiver)
	register("qtech", "show interface transceiver", parseTransceiver)
}
