package reconcile

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
)

// reconcileInventoryItems converges one device's hardware components.
// Items match by name within the device; a replaced module shows up as
// a serial update on the same name.
func (s *Syncer) reconcileInventoryItems(ctx context.Context, st *runState, res *collector.DeviceResult) {
	hostname := hostnameOf(res)
	dev := st.devices[hostname]
	if dev == nil {
		if s.dryRun {
			for _, item := range res.Inventory {
				s.commit(ctx, st, EntityInventoryItems, &ObjectChange{
					Type:   ChangeCreate,
					Object: objectKey(hostname, item.Name),
				})
			}
		}
		return
	}

	nb, err := s.inv.ListInventoryItems(ctx, dev.ID)
	if err != nil {
		st.errs = multierror.Append(st.errs, err)
		return
	}
	byName := make(map[string]*inventory.InventoryItem, len(nb))
	for _, i := range nb {
		byName[i.Name] = i
	}

	seen := make(map[string]bool, len(res.Inventory))
	for _, item := range res.Inventory {
		if item.Name == "" || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		key := objectKey(hostname, item.Name)
		existing := byName[item.Name]

		if existing == nil {
			data := map[string]interface{}{
				"device":     dev.ID,
				"name":       item.Name,
				"discovered": true,
			}
			if item.PID != "" {
				data["part_id"] = item.PID
			}
			if item.Serial != "" {
				data["serial"] = item.Serial
			}
			if item.Description != "" {
				data["description"] = item.Description
			}
			c := &ObjectChange{Type: ChangeCreate, Object: key, Data: data}
			c.apply = func(ctx context.Context) error {
				return s.inv.CreateInventoryItems(ctx, []map[string]interface{}{data})
			}
			s.commit(ctx, st, EntityInventoryItems, c)
			continue
		}

		fs := s.newFieldSet(EntityInventoryItems)
		fs.diff("serial", existing.Serial, item.Serial)
		fs.diff("part_id", existing.PartID, item.PID)
		fs.diff("description", existing.Description, item.Description)
		if fs.empty() {
			s.skipUnchanged(ctx, st, EntityInventoryItems, key, existing.ID)
			continue
		}
		c := &ObjectChange{
			Type:   ChangeUpdate,
			Object: key,
			ID:     existing.ID,
			Fields: fs.fields,
			Data:   fs.data,
		}
		c.apply = func(ctx context.Context) error {
			return s.inv.UpdateInventoryItem(ctx, existing.ID, fs.data)
		}
		s.commit(ctx, st, EntityInventoryItems, c)
	}

	for name, existing := range byName {
		if seen[name] {
			continue
		}
		key := objectKey(hostname, name)
		if !s.policy.AllowDelete(EntityInventoryItems, name) {
			s.commit(ctx, st, EntityInventoryItems, &ObjectChange{
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
			return s.inv.DeleteInventoryItem(ctx, id)
		}
		s.commit(ctx, st, EntityInventoryItems, c)
	}
}
