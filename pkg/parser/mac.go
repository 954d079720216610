package parser

import (
	"regexp"
	"strings"
)

// MAC table rows are near-identical across vendors: an optional marker
// column, VLAN, MAC, learn type, then the port in the last column
// (NX-OS inserts age/secure/ntfy columns before it).
var macTableRow = regexp.MustCompile(
	`^\s*[*+RG]?\s*(\d+)\s+([0-9a-fA-F]{4}\.[0-9a-fA-F]{4}\.[0-9a-fA-F]{4}|[0-9a-fA-F:]{17}|[0-9a-fA-F\-]{17})\s+(\S+)\s+(?:\S+\s+)*?(\S+)\s*$`)

func parseMACTable(raw string) []Row {
	var rows []Row
	for _, line := range strings.Split(raw, "\n") {
		m := macTableRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		port := m[4]
		// multi-port static entries list "Gi0/1 Gi0/2"; keep the first
		if i := strings.IndexByte(port, ','); i > 0 {
			port = port[:i]
		}
		rows = append(rows, Row{
			"vlan":                m[1],
			"destination_address": m[2],
			"type":                m[3],
			"destination_port":    port,
		})
	}
	return rows
}

func init() {
	register("ios", "show mac address-table", parseMACTable)
	register("nxos", "show mac address-table", parseMACTable)
	register("eos", "show mac address-table", parseMACTable)
	register("qtech", "show mac-address-table", parseMACTable)
}
