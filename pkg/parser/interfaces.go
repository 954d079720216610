package parser

import (
	"regexp"
	"strings"
)

// Interface blocks across IOS, EOS, NX-OS, and QTech share a shape:
// a header line naming the interface and its state, followed by
// indented detail lines. The per-family templates differ only in the
// header and a few detail spellings.

var (
	// "GigabitEthernet0/1 is up, line protocol is up (connected)"
	iosIfHeader = regexp.MustCompile(`^(\S+) is ([\w\s\-]+?)(?:, line protocol is (\S+))?(?:\s*\((\S+)\))?\s*$`)
	// NX-OS: "Ethernet1/1 is up" with "admin state is up" on the next line
	nxosAdminState = regexp.MustCompile(`^\s*admin state is (\S+)`)
	// QTech: "TFGigabitEthernet 0/1 is UP  , line protocol is UP"
	qtechIfHeader = regexp.MustCompile(`^(\S+(?:\s+\d\S*)?) is ([\w\-]+)\s*(?:,\s*line protocol is (\S+))?`)

	ifHardware = regexp.MustCompile(`(?i)Hardware(?: is|:)\s*([^,]+?)(?:,|$)`)
	ifAddress  = regexp.MustCompile(`(?i)address(?: is|:)\s*([0-9a-fA-F.:\-]+)`)
	ifDescr    = regexp.MustCompile(`(?i)^\s*Description:\s*(.*)$`)
	ifInet     = regexp.MustCompile(`(?i)Internet [Aa]ddress is\s*(\S+)`)
	ifMTU      = regexp.MustCompile(`(?i)MTU\s+(\d+)`)
	ifSpeedBW  = regexp.MustCompile(`(?i)BW\s+(\d+)\s*[Kk]bit`)
	ifDuplex   = regexp.MustCompile(`(?i)(full|half)-duplex`)
	ifSpeed    = regexp.MustCompile(`(?i)duplex,\s*(\d+)\s*([MG])b?/?s`)
	ifMedia    = regexp.MustCompile(`(?i)media type is\s+(.+?)\s*$`)
)

func parseInterfaceBlock(block string, nxos bool) Row {
	lines := strings.Split(block, "\n")
	head := lines[0]

	var m []string
	if nxos {
		m = qtechIfHeader.FindStringSubmatch(head) // same header shape
	} else {
		m = iosIfHeader.FindStringSubmatch(head)
	}
	if m == nil {
		return nil
	}
	row := Row{
		"interface":   strings.TrimSpace(m[1]),
		"link_status": strings.TrimSpace(m[2]),
	}
	if len(m) > 3 && m[3] != "" {
		row["protocol_status"] = m[3]
	}

	for _, line := range lines[1:] {
		if nxos {
			if am := nxosAdminState.FindStringSubmatch(line); am != nil {
				row["link_status"] = am[1]
				continue
			}
		}
		if d := ifDescr.FindStringSubmatch(line); d != nil {
			row["description"] = strings.TrimSpace(d[1])
			continue
		}
		if h := ifHardware.FindStringSubmatch(line); h != nil && row["hardware"] == "" {
			row["hardware"] = strings.TrimSpace(h[1])
		}
		if a := ifAddress.FindStringSubmatch(line); a != nil && row["mac_address"] == "" {
			if strings.Contains(strings.ToLower(line), "address") && !strings.Contains(strings.ToLower(line), "internet") {
				row["mac_address"] = a[1]
			}
		}
		if i := ifInet.FindStringSubmatch(line); i != nil {
			addr := i[1]
			if ip, prefix, ok := strings.Cut(addr, "/"); ok {
				row["ip_address"] = ip
				row["prefix"] = prefix
			} else {
				row["ip_address"] = addr
			}
			continue
		}
		if mt := ifMTU.FindStringSubmatch(line); mt != nil && row["mtu"] == "" {
			row["mtu"] = mt[1]
		}
		if bw := ifSpeedBW.FindStringSubmatch(line); bw != nil && row["bandwidth"] == "" {
			row["bandwidth"] = bw[1]
		}
		if dp := ifDuplex.FindStringSubmatch(line); dp != nil && row["duplex"] == "" {
			row["duplex"] = strings.ToLower(dp[1])
		}
		if sp := ifSpeed.FindStringSubmatch(line); sp != nil && row["speed"] == "" {
			n := sp[1]
			if strings.EqualFold(sp[2], "G") {
				n += "000"
			}
			row["speed"] = n
		}
		if md := ifMedia.FindStringSubmatch(line); md != nil && row["media_type"] == "" {
			row["media_type"] = strings.TrimSpace(md[1])
		}
	}

	// BW in Kbit is the speed when no explicit rate line appeared
	if row["speed"] == "" && row["bandwidth"] != "" {
		kbit := row["bandwidth"]
		if len(kbit) > 3 {
			row["speed"] = kbit[:len(kbit)-3]
		}
	}
	delete(row, "bandwidth")
	return row
}

func interfaceBlockStarts(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	name, _, ok := strings.Cut(line, " is ")
	if !ok {
		return false
	}
	// interface names carry a unit number; "admin state is up" does not
	return strings.ContainsAny(name, "0123456789")
}

func parseShowInterfaces(nxos bool) ParseFunc {
	return func(raw string) []Row {
		var rows []Row
		for _, block := range splitBlocks(raw, interfaceBlockStarts) {
			if row := parseInterfaceBlock(block, nxos); row != nil {
				rows = append(rows, row)
			}
		}
		return rows
	}
}

func init() {
	register("ios", "show interfaces", parseShowInterfaces(false))
	register("eos", "show interfaces", parseShowInterfaces(false))
	register("nxos", "show interface", parseShowInterfaces(true))
	register("qtech", "show interface", parseShowInterfaces(true))
}
