package parser

import (
	"regexp"
	"strings"
)

// NX-OS "show interface status" is the only place the exact optic type
// appears ("show interface" reports just the rate class). Columns:
// Port, Name, Status, Vlan, Duplex, Speed, Type — Name may be blank or
// contain spaces, so the row is matched from both ends.
var statusRow = regexp.MustCompile(
	`^(\S+\d\S*)\s+(.*?)\s*(connected|notconnect|notconnec|disabled|err-disabled|sfpAbsent|xcvrAbsen|noOperMem|down|up)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s*$`)

func parseInterfaceStatus(raw string) []Row {
	var rows []Row
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Port") || strings.HasPrefix(line, "----") {
			continue
		}
		m := statusRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, Row{
			"interface": m[1],
			"name":      strings.TrimSpace(m[2]),
			"status":    m[3],
			"vlan":      m[4],
			"duplex":    m[5],
			"speed":     m[6],
			"type":      m[7],
		})
	}
	return rows
}

func init() {
	register("nxos", "show interface status", parseInterfaceStatus)
}
