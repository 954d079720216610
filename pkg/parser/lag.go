package parser

import (
	"regexp"
	"strings"
)

// LAG summaries list the bundle and its members on one row. Each
// template emits one row per member: {"lag": ..., "member": ...}.

var (
	// IOS: "1      Po1(SU)         LACP      Gi0/1(P)    Gi0/2(P)"
	// NX-OS/EOS: "1     Po1(SU)     Eth      LACP     Eth1/1(P)  Eth1/2(P)"
	channelRow = regexp.MustCompile(`^\s*\d+\s+(\S+?)\(([\w]*)\)\s+(.*)$`)
	memberTok  = regexp.MustCompile(`([A-Za-z][\w/.\-]*\d[\w/.\-]*)\((\w+)\)`)

	// QTech: "Ag1   8   Enabled   ACCESS   TFGigabitEthernet 0/1,TFGigabitEthernet 0/2"
	aggRow = regexp.MustCompile(`^\s*(Ag\d+|AggregatePort\s*\d+)\s+.*?((?:\S+\s+\d\S*|\S+\d\S*)(?:\s*,\s*(?:\S+\s+\d\S*|\S+\d\S*))*)\s*$`)
)

func parseChannelSummary(raw string) []Row {
	var rows []Row
	for _, line := range strings.Split(raw, "\n") {
		m := channelRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lag := m[1]
		for _, mm := range memberTok.FindAllStringSubmatch(m[3], -1) {
			rows = append(rows, Row{"lag": lag, "member": mm[1]})
		}
	}
	return rows
}

func parseAggregateSummary(raw string) []Row {
	var rows []Row
	for _, line := range strings.Split(raw, "\n") {
		m := aggRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lag := strings.ReplaceAll(m[1], " ", "")
		for _, member := range strings.Split(m[2], ",") {
			member = strings.TrimSpace(member)
			if member != "" {
				rows = append(rows, Row{"lag": lag, "member": member})
			}
		}
	}
	return rows
}

func init() {
	register("ios", "show etherchannel summary", parseChannelSummary)
	register("nxos", "show port-channel summary", parseChannelSummary)
	register("eos", "show port-channel summary", parseChannelSummary)
	register("qtech", "show aggregatePort summary", parseAggregateSummary)
}
