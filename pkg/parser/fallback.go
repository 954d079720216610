package parser

import (
	"regexp"
	"strings"
)

// Regex fallbacks per primary command: hand-written patterns that
// recover the minimum fields when no template matched. Keys follow the
// template key names so the normalizers treat both paths identically.

var (
	fbMAC = regexp.MustCompile(
		`(?m)^\s*\*?\s*(\d{1,4})\s+([0-9a-fA-F]{4}\.[0-9a-fA-F]{4}\.[0-9a-fA-F]{4})\s+\S+\s+.*?(\S+)\s*$`)
	fbInterface = regexp.MustCompile(
		`(?m)^([A-Za-z][\w/.\-]*\d[\w/.\-]*) is ([\w\s\-]+?)(?:,|$)`)
	fbVersion = regexp.MustCompile(`(?im)version\s+([^,\s]+)`)
	fbLLDP    = regexp.MustCompile(`(?im)^System Name:\s*(\S+)`)
	fbInv     = regexp.MustCompile(`(?i)PID:\s*(\S+)`)
)

// Fallback recovers minimal rows for a primary command. Returns nil
// when nothing can be salvaged.
func Fallback(command, raw string) []Row {
	switch {
	case strings.Contains(command, "mac"):
		var rows []Row
		for _, m := range fbMAC.FindAllStringSubmatch(raw, -1) {
			rows = append(rows, Row{
				"vlan":                m[1],
				"destination_address": m[2],
				"destination_port":    m[3],
			})
		}
		return rows
	case strings.Contains(command, "interface") && !strings.Contains(command, "switchport") &&
		!strings.Contains(command, "transceiver") && !strings.Contains(command, "status"):
		var rows []Row
		for _, m := range fbInterface.FindAllStringSubmatch(raw, -1) {
			rows = append(rows, Row{
				"interface":   m[1],
				"link_status": strings.TrimSpace(m[2]),
			})
		}
		return rows
	case strings.Contains(command, "version"):
		if m := fbVersion.FindStringSubmatch(raw); m != nil {
			return []Row{{"version": m[1]}}
		}
	case strings.Contains(command, "lldp"):
		var rows []Row
		for _, m := range fbLLDP.FindAllStringSubmatch(raw, -1) {
			rows = append(rows, Row{"system_name": m[1]})
		}
		return rows
	case strings.Contains(command, "inventory"):
		var rows []Row
		for _, m := range fbInv.FindAllStringSubmatch(raw, -1) {
			rows = append(rows, Row{"pid": m[1]})
		}
		return rows
	}
	return nil
}
