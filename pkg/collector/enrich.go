package collector

import (
	"context"
	"strings"

	"github.com/netsync-network/netsync/pkg/canon"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/parser"
	"github.com/netsync-network/netsync/pkg/util"
)

// Enrichment side maps are keyed under every known spelling of the
// interface name, because the secondary command reports names in a
// different form than the primary one (Gi0/1 vs GigabitEthernet0/1,
// QTech's "TFGigabitEthernet 0/1" with a space). Enrichment failures
// never fail the entity: a missing side map just means fewer fields.

// sideRows runs one enrichment command and parses it, returning nil on
// any failure.
func sideRows(ctx context.Context, device model.Device, sess Session, table map[string]string) []parser.Row {
	cmd, ok := commandFor(table, device.Platform)
	if !ok {
		return nil
	}
	raw, err := sess.Send(ctx, cmd)
	if err != nil {
		util.WithDevice(device.Host).WithError(err).Debugf("enrichment %q skipped", cmd)
		return nil
	}
	rows, err := parser.Parse(device.Platform, cmd, raw)
	if err != nil {
		util.WithDevice(device.Host).Debugf("enrichment %q produced no rows", cmd)
		return nil
	}
	return rows
}

// registerAliases stores value under every spelling of name, keeping
// the first registration on conflict.
func registerAliases(m map[string]string, name, value string) {
	for _, a := range canon.Aliases(name) {
		if _, dup := m[a]; !dup {
			m[a] = value
		}
	}
}

// lagMembership maps member interface spellings to their canonical LAG
// name.
func (c *Collector) lagMembership(ctx context.Context, device model.Device, sess Session) map[string]string {
	if !c.enrich.LAG {
		return nil
	}
	m := make(map[string]string)
	for _, row := range sideRows(ctx, device, sess, lagCommands) {
		lag := canon.LongName(row["lag"])
		member := strings.TrimSpace(row["member"])
		if lag == "" || member == "" {
			continue
		}
		registerAliases(m, member, lag)
	}
	return m
}

// portMode is the derived 802.1Q configuration of one port.
type portMode struct {
	mode     model.SwitchportMode
	untagged int
	tagged   []int
}

// taggedAllSpellings are the trunk VLAN lists that mean "everything":
// the port carries all VLANs and NetBox models it as tagged-all.
var taggedAllSpellings = map[string]bool{
	"":       true,
	"ALL":    true,
	"1-4094": true,
	"1-4093": true,
	"1-4095": true,
}

// switchportModes derives port modes from "show ... switchport" rows.
// The administrative mode is preferred over the operational one so a
// down port still reports its configured mode. Modes that are neither
// trunk nor access (dynamic auto that never negotiated, dot1q-tunnel)
// stay unset.
func (c *Collector) switchportModes(ctx context.Context, device model.Device, sess Session) map[string]portMode {
	if !c.enrich.Switchport {
		return nil
	}
	m := make(map[string]portMode)
	for _, row := range sideRows(ctx, device, sess, switchportCommands) {
		name := strings.TrimSpace(row["interface"])
		if name == "" {
			continue
		}
		mode := util.FirstNonEmpty(row["admin_mode"], row["oper_mode"])
		pm := derivePortMode(mode, row["trunking_vlans"], row["access_vlan"], row["native_vlan"])
		for _, a := range canon.Aliases(name) {
			if _, dup := m[a]; !dup {
				m[a] = pm
			}
		}
	}
	return m
}

func derivePortMode(mode, trunkingVLANs, accessVLAN, nativeVLAN string) portMode {
	var pm portMode
	switch l := strings.ToLower(strings.TrimSpace(mode)); {
	case strings.Contains(l, "trunk"):
		vl := strings.ToUpper(strings.TrimSpace(trunkingVLANs))
		if taggedAllSpellings[vl] {
			pm.mode = model.ModeTaggedAll
		} else {
			pm.mode = model.ModeTagged
			pm.tagged = util.ExpandVLANRange(trunkingVLANs)
		}
		pm.untagged = atoi(nativeVLAN)
	case strings.Contains(l, "access"):
		pm.mode = model.ModeAccess
		pm.untagged = atoi(accessVLAN)
	default:
		pm.mode = model.ModeUnset
	}
	return pm
}

// mediaTypes maps interface spellings to the exact optic type from
// "show interface status". Only NX-OS reports the optic there; other
// platforms have no entry in the table and yield nil.
func (c *Collector) mediaTypes(ctx context.Context, device model.Device, sess Session) map[string]string {
	if !c.enrich.Media {
		return nil
	}
	m := make(map[string]string)
	for _, row := range sideRows(ctx, device, sess, statusCommands) {
		name := strings.TrimSpace(row["interface"])
		mt := strings.TrimSpace(row["type"])
		if name == "" || mt == "" || mt == "--" {
			continue
		}
		registerAliases(m, name, mt)
	}
	return m
}

// lookupAlias finds a side-map entry for any spelling of name.
func lookupAlias(m map[string]string, name string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, a := range canon.Aliases(name) {
		if v, ok := m[a]; ok {
			return v, true
		}
	}
	return "", false
}

func atoi(s string) int {
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
