package parser

import (
	"regexp"
	"strings"
)

// "show version" differs enough per vendor that each family gets its
// own template. Every template emits a single row with the same raw
// keys: hostname, version, model, serial, uptime.

var (
	iosVersion = regexp.MustCompile(`(?i)(?:IOS|IOS[ -]XE).*?Version\s+([^,\s]+)`)
	iosUptime  = regexp.MustCompile(`(?m)^(\S+)\s+uptime is\s+(.+)$`)
	iosModel   = regexp.MustCompile(`(?im)^cisco\s+(\S+)\s+\(`)
	iosSerial  = regexp.MustCompile(`(?im)^(?:Processor board ID|System [Ss]erial [Nn]umber\s*:?)\s*(\S+)`)
)

func parseVersionIOS(raw string) []Row {
	row := Row{}
	if m := iosVersion.FindStringSubmatch(raw); m != nil {
		row["version"] = m[1]
	}
	if m := iosUptime.FindStringSubmatch(raw); m != nil {
		row["hostname"] = m[1]
		row["uptime"] = strings.TrimSpace(m[2])
	}
	if m := iosModel.FindStringSubmatch(raw); m != nil {
		row["model"] = m[1]
	}
	if m := iosSerial.FindStringSubmatch(raw); m != nil {
		row["serial"] = m[1]
	}
	if len(row) == 0 {
		return nil
	}
	return []Row{row}
}

var (
	nxosVersion = regexp.MustCompile(`(?im)^\s*NXOS:\s*version\s+(\S+)`)
	nxosModel   = regexp.MustCompile(`(?im)^\s*cisco\s+(Nexus\S*\s+\S+)\s+[Cc]hassis`)
	nxosSerial  = regexp.MustCompile(`(?im)^\s*Processor Board ID\s+(\S+)`)
	nxosName    = regexp.MustCompile(`(?im)^\s*Device name:\s*(\S+)`)
	nxosUptime  = regexp.MustCompile(`(?im)^\s*Kernel uptime is\s+(.+)$`)
)

func parseVersionNXOS(raw string) []Row {
	row := Row{}
	if m := nxosVersion.FindStringSubmatch(raw); m != nil {
		row["version"] = m[1]
	}
	if m := nxosModel.FindStringSubmatch(raw); m != nil {
		row["model"] = strings.Join(strings.Fields(m[1]), " ")
	}
	if m := nxosSerial.FindStringSubmatch(raw); m != nil {
		row["serial"] = m[1]
	}
	if m := nxosName.FindStringSubmatch(raw); m != nil {
		row["hostname"] = m[1]
	}
	if m := nxosUptime.FindStringSubmatch(raw); m != nil {
		row["uptime"] = strings.TrimSpace(m[1])
	}
	if len(row) == 0 {
		return nil
	}
	return []Row{row}
}

var (
	eosModel   = regexp.MustCompile(`(?im)^\s*Arista\s+(\S+)`)
	eosSerial  = regexp.MustCompile(`(?im)^\s*Serial number:\s*(\S+)`)
	eosVersion = regexp.MustCompile(`(?im)^\s*Software image version:\s*(\S+)`)
	eosUptime  = regexp.MustCompile(`(?im)^\s*Uptime:\s*(.+)$`)
)

func parseVersionEOS(raw string) []Row {
	row := Row{}
	if m := eosModel.FindStringSubmatch(raw); m != nil {
		row["model"] = m[1]
	}
	if m := eosSerial.FindStringSubmatch(raw); m != nil {
		row["serial"] = m[1]
	}
	if m := eosVersion.FindStringSubmatch(raw); m != nil {
		row["version"] = m[1]
	}
	if m := eosUptime.FindStringSubmatch(raw); m != nil {
		row["uptime"] = strings.TrimSpace(m[1])
	}
	if len(row) == 0 {
		return nil
	}
	return []Row{row}
}

var (
	qtechVersion = regexp.MustCompile(`(?im)Software.*?Version\s+([^,\s]+)`)
	qtechModel   = regexp.MustCompile(`(?im)^\s*Hardware model\s*:?\s*(\S+)`)
	qtechSerial  = regexp.MustCompile(`(?im)^\s*System serial number\s*:?\s*(\S+)`)
	qtechUptime  = regexp.MustCompile(`(?im)^\s*System uptime is\s+(.+)$`)
)

func parseVersionQTech(raw string) []Row {
	row := Row{}
	if m := qtechVersion.FindStringSubmatch(raw); m != nil {
		row["version"] = m[1]
	}
	if m := qtechModel.FindStringSubmatch(raw); m != nil {
		row["model"] = m[1]
	}
	if m := qtechSerial.FindStringSubmatch(raw); m != nil {
		row["serial"] = m[1]
	}
	if m := qtechUptime.FindStringSubmatch(raw); m != nil {
		row["uptime"] = strings.TrimSpace(m[1])
	}
	if len(row) == 0 {
		return nil
	}
	return []Row{row}
}

func init() {
	register("ios", "show version", parseVersionIOS)
	register("nxos", "show version", parseVersionNXOS)
	register("eos", "show version", parseVersionEOS)
	register("qtech", "show version", parseVersionQTech)
}
