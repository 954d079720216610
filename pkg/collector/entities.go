package collector

import (
	"context"
	"strings"

	"github.com/netsync-network/netsync/pkg/canon"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/parser"
	"github.com/netsync-network/netsync/pkg/util"
)

// collectDeviceInfo builds the catalog record from "show version". The
// hostname prefers the parser's value and falls back to the prompt.
func (c *Collector) collectDeviceInfo(ctx context.Context, device model.Device, sess Session) (*model.DeviceInfo, error) {
	cmd, ok := commandFor(versionCommands, device.Platform)
	if !ok {
		return nil, nil
	}
	raw, err := sess.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	rows, err := parser.Parse(device.Platform, cmd, raw)
	if err != nil {
		return nil, err
	}
	row := rows[0]
	info := &model.DeviceInfo{
		Hostname:     util.FirstNonEmpty(row["hostname"], sess.Hostname()),
		MgmtIP:       device.Host,
		Platform:     string(device.Platform),
		Model:        row["model"],
		Serial:       row["serial"],
		Version:      row["version"],
		Uptime:       row["uptime"],
		Manufacturer: platformVendor(device.Platform),
		Status:       "active",
	}
	return info, nil
}

func platformVendor(p model.Platform) string {
	switch p {
	case model.PlatformCiscoIOS, model.PlatformCiscoIOSXE, model.PlatformCiscoNXOS, model.PlatformCiscoIOSXR:
		return "Cisco"
	case model.PlatformAristaEOS:
		return "Arista"
	case model.PlatformJuniper:
		return "Juniper"
	case model.PlatformQTech, model.PlatformQTechQSW:
		return "QTech"
	}
	return ""
}

// collectInterfaces runs the primary interface command, then the
// enrichment passes, and normalizes the rows into Interface records.
func (c *Collector) collectInterfaces(ctx context.Context, device model.Device, sess Session) ([]*model.Interface, error) {
	cmd, ok := commandFor(interfaceCommands, device.Platform)
	if !ok {
		return nil, nil
	}
	raw, err := sess.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	rows, err := parser.Parse(device.Platform, cmd, raw)
	if err != nil {
		return nil, err
	}

	lags := c.lagMembership(ctx, device, sess)
	modes := c.switchportModes(ctx, device, sess)
	media := c.mediaTypes(ctx, device, sess)

	out := make([]*model.Interface, 0, len(rows))
	for _, row := range rows {
		intf, err := model.InterfaceFromRaw(row)
		if err != nil || intf.Name == "" {
			continue
		}
		intf.Hostname = sess.Hostname()
		intf.DeviceIP = device.Host

		if lag, ok := lookupAlias(lags, intf.Name); ok {
			intf.LAG = lag
		}
		if pm, ok := lookupPortMode(modes, intf.Name); ok {
			intf.Mode = pm.mode
			intf.UntaggedVLAN = pm.untagged
			intf.TaggedVLANs = pm.tagged
		}
		// The status column only refines a missing or generic media
		// type; a concrete one from the detail output stands.
		if mt, ok := lookupAlias(media, intf.Name); ok && mt != "" {
			intf.MediaType = mt
		}
		out = append(out, intf)
	}
	return out, nil
}

func lookupPortMode(m map[string]portMode, name string) (portMode, bool) {
	if m == nil {
		return portMode{}, false
	}
	for _, a := range canon.Aliases(name) {
		if pm, ok := m[a]; ok {
			return pm, true
		}
	}
	return portMode{}, false
}

// collectMACTable parses the MAC address table, deduplicated by
// (VLAN, MAC) keeping the first occurrence.
func (c *Collector) collectMACTable(ctx context.Context, device model.Device, sess Session) ([]*model.MACEntry, error) {
	cmd, ok := commandFor(macTableCommands, device.Platform)
	if !ok {
		return nil, nil
	}
	raw, err := sess.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	rows, err := parser.Parse(device.Platform, cmd, raw)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []*model.MACEntry
	for _, row := range rows {
		e, err := model.MACEntryFromRaw(row)
		if err != nil || e.MAC == "" {
			continue
		}
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		e.Hostname = sess.Hostname()
		e.DeviceIP = device.Host
		out = append(out, e)
	}
	return out, nil
}

// collectNeighbors gathers LLDP adjacencies, plus CDP on platforms
// that speak it. A failure of one protocol does not discard the other.
func (c *Collector) collectNeighbors(ctx context.Context, device model.Device, sess Session) ([]*model.Neighbor, error) {
	var out []*model.Neighbor
	var firstErr error

	for _, proto := range []struct {
		name  string
		table map[string]string
	}{
		{"lldp", lldpCommands},
		{"cdp", cdpCommands},
	} {
		cmd, ok := commandFor(proto.table, device.Platform)
		if !ok {
			continue
		}
		raw, err := sess.Send(ctx, cmd)
		if err != nil {
			if !util.IsRetryable(err) && firstErr == nil {
				firstErr = err
				continue
			}
			return out, err
		}
		rows, err := parser.Parse(device.Platform, cmd, raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, row := range rows {
			n, err := model.NeighborFromRaw(row, proto.name)
			if err != nil || n.LocalInterface == "" {
				continue
			}
			n.Hostname = sess.Hostname()
			out = append(out, n)
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// collectInventory parses "show inventory" and, on platforms whose
// inventory omits optics, synthesizes transceiver items from
// "show interface transceiver". Synthesized items are merged by
// serial so a module the chassis already listed is not duplicated.
func (c *Collector) collectInventory(ctx context.Context, device model.Device, sess Session) ([]*model.InventoryItem, error) {
	var out []*model.InventoryItem
	serials := make(map[string]bool)

	if cmd, ok := commandFor(inventoryCommands, device.Platform); ok {
		raw, err := sess.Send(ctx, cmd)
		if err != nil {
			return nil, err
		}
		rows, err := parser.Parse(device.Platform, cmd, raw)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			item, err := model.InventoryItemFromRaw(row)
			if err != nil || (item.Name == "" && item.PID == "") {
				continue
			}
			item.Hostname = sess.Hostname()
			if item.Serial != "" {
				serials[item.Serial] = true
			}
			out = append(out, item)
		}
	}

	if c.enrich.Transceivers {
		for _, item := range c.transceiverItems(ctx, device, sess) {
			if item.Serial != "" && serials[item.Serial] {
				continue
			}
			out = append(out, item)
		}
	}
	return out, nil
}

// transceiverItems synthesizes inventory items named
// "Transceiver <interface>" from the transceiver detail output. Absent
// optics are skipped. Best effort: any failure yields nil.
func (c *Collector) transceiverItems(ctx context.Context, device model.Device, sess Session) []*model.InventoryItem {
	var out []*model.InventoryItem
	for _, row := range sideRows(ctx, device, sess, transceiverCommands) {
		typ := strings.TrimSpace(row["type"])
		name := canon.LongName(row["interface"])
		if name == "" || typ == "" || strings.EqualFold(typ, "not present") {
			continue
		}
		pid := util.FirstNonEmpty(row["part_number"], typ)
		out = append(out, &model.InventoryItem{
			Name:         "Transceiver " + name,
			Description:  typ,
			PID:          pid,
			Serial:       strings.TrimSpace(row["serial_number"]),
			Manufacturer: model.TransceiverManufacturer(row["name"], pid),
			Hostname:     sess.Hostname(),
		})
	}
	return out
}
