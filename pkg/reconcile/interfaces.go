package reconcile

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/canon"
	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
)

// reconcileInterfaces converges one device's interface records.
// Matching is by canonical long name. Stale records are deleted only
// when the delete pattern covers them; everything else stale is
// reported as a skip.
func (s *Syncer) reconcileInterfaces(ctx context.Context, st *runState, res *collector.DeviceResult) {
	hostname := hostnameOf(res)
	site := st.sites[hostname]
	dev, ok := st.devices[hostname]
	if !ok {
		if s.dryRun {
			// The device itself is still pending creation; plan the
			// interfaces as creates without identities.
			for _, intf := range res.Interfaces {
				s.commit(ctx, st, EntityInterfaces, &ObjectChange{
					Type:   ChangeCreate,
					Object: objectKey(hostname, intf.Name),
					Data:   s.interfacePayload(st, site, intf, 0),
				})
			}
		}
		return
	}

	nb, err := s.inv.ListInterfaces(ctx, dev.ID)
	if err != nil {
		st.errs = multierror.Append(st.errs, err)
		return
	}
	byName := make(map[string]*inventory.Interface, len(nb))
	for _, i := range nb {
		byName[canon.LongName(i.Name)] = i
	}
	if st.interfaces[hostname] == nil {
		st.interfaces[hostname] = make(map[string]*inventory.Interface)
	}
	for name, i := range byName {
		st.interfaces[hostname][name] = i
	}

	seen := make(map[string]bool, len(res.Interfaces))
	for _, intf := range res.Interfaces {
		seen[intf.Name] = true
		existing := byName[intf.Name]
		if existing == nil {
			s.createInterface(ctx, st, hostname, site, dev.ID, intf)
			continue
		}
		s.updateInterface(ctx, st, hostname, site, intf, existing)
	}

	for name, existing := range byName {
		if seen[name] {
			continue
		}
		key := objectKey(hostname, name)
		if !s.policy.AllowDelete(EntityInterfaces, name) {
			s.commit(ctx, st, EntityInterfaces, &ObjectChange{
				Type:   ChangeSkip,
				Object: key,
				ID:     existing.ID,
				Reason: "stale but not covered by delete pattern",
			})
			continue
		}
		id := existing.ID
		c := &ObjectChange{Type: ChangeDelete, Object: key, ID: id}
		c.apply = func(ctx context.Context) error {
			return s.inv.DeleteInterface(ctx, id)
		}
		s.commit(ctx, st, EntityInterfaces, c)
	}
}

func (s *Syncer) createInterface(ctx context.Context, st *runState, hostname, site string, deviceID int, intf *model.Interface) {
	c := &ObjectChange{
		Type:   ChangeCreate,
		Object: objectKey(hostname, intf.Name),
		Data:   s.interfacePayload(st, site, intf, deviceID),
	}
	if skipped := s.vlanAssignmentBlocked(st, site, intf); skipped != "" {
		s.commit(ctx, st, EntityInterfaces, &ObjectChange{
			Type:   ChangeSkip,
			Object: objectKey(hostname, intf.Name) + " 802.1q",
			Reason: skipped,
		})
	}
	c.apply = func(ctx context.Context) error {
		created, err := s.inv.CreateInterface(ctx, c.Data)
		if err != nil {
			return err
		}
		st.interfaces[hostname][intf.Name] = created
		return nil
	}
	s.commit(ctx, st, EntityInterfaces, c)
}

func (s *Syncer) updateInterface(ctx context.Context, st *runState, hostname, site string, intf *model.Interface, existing *inventory.Interface) {
	fs := s.newFieldSet(EntityInterfaces)
	fs.raw = intf.Raw

	// Descriptions propagate even when cleared on the device.
	fs.diffAlways("description", existing.Description, intf.Description)
	fs.diff("mtu", existing.MTU, intf.MTU)
	fs.diff("mac_address", existing.MACAddress, canon.FormatMAC(intf.MAC, canon.MACNetBox))
	if existing.Type != nil {
		fs.diff("type", existing.Type.Value, intf.NetBoxType())
	}
	if intf.AdminStatus != "" {
		enabled := intf.AdminStatus == "up"
		old := true
		if existing.Enabled != nil {
			old = *existing.Enabled
		}
		if old != enabled && s.policy.FieldEnabled(EntityInterfaces, "enabled") {
			fs.fields = append(fs.fields, FieldChange{Field: "enabled", Old: old, New: enabled})
			fs.data["enabled"] = enabled
		}
	}
	s.diffMode(st, site, fs, intf, existing)
	if blocked := s.vlanAssignmentBlocked(st, site, intf); blocked != "" {
		s.commit(ctx, st, EntityInterfaces, &ObjectChange{
			Type:   ChangeSkip,
			Object: objectKey(hostname, intf.Name) + " 802.1q",
			Reason: blocked,
		})
	}

	if fs.empty() {
		s.skipUnchanged(ctx, st, EntityInterfaces, objectKey(hostname, intf.Name), existing.ID)
		return
	}
	c := &ObjectChange{
		Type:   ChangeUpdate,
		Object: objectKey(hostname, intf.Name),
		ID:     existing.ID,
		Fields: fs.fields,
		Data:   fs.data,
	}
	c.apply = func(ctx context.Context) error {
		return s.inv.UpdateInterface(ctx, existing.ID, fs.data)
	}
	s.commit(ctx, st, EntityInterfaces, c)
}

// interfacePayload builds the create payload, including the 802.1Q
// assignment when it is resolvable.
func (s *Syncer) interfacePayload(st *runState, site string, intf *model.Interface, deviceID int) map[string]interface{} {
	fs := s.newFieldSet(EntityInterfaces)
	fs.raw = intf.Raw
	if deviceID > 0 {
		fs.data["device"] = deviceID
	}
	fs.data["name"] = intf.Name
	fs.data["type"] = intf.NetBoxType()
	fs.set("description", intf.Description)
	fs.set("mtu", intf.MTU)
	fs.set("mac_address", canon.FormatMAC(intf.MAC, canon.MACNetBox))
	if intf.AdminStatus != "" {
		fs.data["enabled"] = intf.AdminStatus == "up"
	}
	s.applyMode(st, site, fs.data, intf)
	return fs.data
}

// diffMode compares the 802.1Q configuration. A collected tagged mode
// with no resolvable VLANs never downgrades an existing assignment.
func (s *Syncer) diffMode(st *runState, site string, fs *fieldSet, intf *model.Interface, existing *inventory.Interface) {
	if intf.Mode == model.ModeUnset {
		return
	}
	mode := netboxMode(intf.Mode)
	if intf.Mode == model.ModeTagged && len(s.resolveVIDs(st, site, intf.TaggedVLANs)) == 0 {
		return
	}
	old := ""
	if existing.Mode != nil {
		old = existing.Mode.Value
	}
	fs.diff("mode", old, mode)

	if v, ok := st.vlanFor(site, intf.UntaggedVLAN); ok && intf.UntaggedVLAN > 0 {
		oldID := 0
		if existing.UntaggedVLAN != nil {
			oldID = existing.UntaggedVLAN.ID
		}
		fs.diff("untagged_vlan", oldID, v.ID)
	}
	if intf.Mode == model.ModeTagged {
		newIDs := s.resolveVIDs(st, site, intf.TaggedVLANs)
		oldIDs := make([]int, 0, len(existing.TaggedVLANs))
		for _, r := range existing.TaggedVLANs {
			oldIDs = append(oldIDs, r.ID)
		}
		fs.diff("tagged_vlans", oldIDs, newIDs)
	}
}

// applyMode writes the 802.1Q fields into a create payload.
func (s *Syncer) applyMode(st *runState, site string, data map[string]interface{}, intf *model.Interface) {
	if intf.Mode == model.ModeUnset {
		return
	}
	if intf.Mode == model.ModeTagged {
		ids := s.resolveVIDs(st, site, intf.TaggedVLANs)
		if len(ids) == 0 {
			return
		}
		data["mode"] = netboxMode(intf.Mode)
		data["tagged_vlans"] = ids
	} else {
		data["mode"] = netboxMode(intf.Mode)
	}
	if v, ok := st.vlanFor(site, intf.UntaggedVLAN); ok && intf.UntaggedVLAN > 0 {
		data["untagged_vlan"] = v.ID
	}
}

// vlanAssignmentBlocked explains why a tagged assignment cannot happen
// yet, or returns "".
func (s *Syncer) vlanAssignmentBlocked(st *runState, site string, intf *model.Interface) string {
	if intf.Mode != model.ModeTagged {
		return ""
	}
	if len(intf.TaggedVLANs) == 0 {
		return "tagged mode reported without a VLAN list"
	}
	if len(s.resolveVIDs(st, site, intf.TaggedVLANs)) == 0 {
		return "tagged VLANs not present in inventory yet"
	}
	return ""
}

// resolveVIDs maps VIDs onto VLAN record IDs, dropping unknown ones.
func (s *Syncer) resolveVIDs(st *runState, site string, vids []int) []int {
	var ids []int
	for _, vid := range vids {
		if v, ok := st.vlanFor(site, vid); ok {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func netboxMode(m model.SwitchportMode) string {
	switch m {
	case model.ModeAccess:
		return "access"
	case model.ModeTagged:
		return "tagged"
	case model.ModeTaggedAll:
		return "tagged-all"
	}
	return ""
}

func objectKey(hostname, name string) string {
	return fmt.Sprintf("%s:%s", hostname, name)
}

func hostnameOf(res *collector.DeviceResult) string {
	if res.Info != nil && res.Info.Hostname != "" {
		return res.Info.Hostname
	}
	return res.Hostname
}
