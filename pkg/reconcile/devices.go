package reconcile

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// reconcileDevice ensures the device record exists and its catalog
// fields match. The hostname read off the device is the natural key.
func (s *Syncer) reconcileDevice(ctx context.Context, st *runState, dev model.Device, res *collector.DeviceResult) {
	name := res.Hostname
	if res.Info != nil && res.Info.Hostname != "" {
		name = res.Info.Hostname
	}

	existing, err := s.inv.GetDeviceByName(ctx, name)
	if err != nil {
		st.errs = multierror.Append(st.errs, err)
		return
	}

	if existing == nil {
		c := &ObjectChange{
			Type:   ChangeCreate,
			Object: name,
			Data:   map[string]interface{}{"name": name, "status": "active"},
		}
		if res.Info != nil {
			c.Data["serial"] = res.Info.Serial
		}
		c.apply = func(ctx context.Context) error {
			created, err := s.createDevice(ctx, name, dev, res)
			if err != nil {
				return err
			}
			st.devices[name] = created
			return nil
		}
		s.commit(ctx, st, EntityDevices, c)
		return
	}

	st.devices[name] = existing

	fs := s.newFieldSet(EntityDevices)
	if res.Info != nil {
		fs.diff("serial", existing.Serial, res.Info.Serial)
	}
	if existing.Status != nil {
		fs.diff("status", existing.Status.Value, "active")
	} else {
		fs.diff("status", "", "active")
	}
	if fs.empty() {
		s.skipUnchanged(ctx, st, EntityDevices, name, existing.ID)
		return
	}
	c := &ObjectChange{
		Type:   ChangeUpdate,
		Object: name,
		ID:     existing.ID,
		Fields: fs.fields,
		Data:   fs.data,
	}
	c.apply = func(ctx context.Context) error {
		return s.inv.UpdateDevice(ctx, existing.ID, fs.data)
	}
	s.commit(ctx, st, EntityDevices, c)
}

// createDevice resolves the reference objects a new device record
// needs, creating any that are missing, then creates the device.
func (s *Syncer) createDevice(ctx context.Context, name string, dev model.Device, res *collector.DeviceResult) (*inventory.Device, error) {
	manufacturer := "Generic"
	deviceModel := util.FirstNonEmpty(dev.Model, "Unknown")
	if res.Info != nil {
		manufacturer = util.FirstNonEmpty(res.Info.Manufacturer, manufacturer)
		deviceModel = util.FirstNonEmpty(res.Info.Model, deviceModel)
	}

	m, err := s.inv.GetOrCreateManufacturer(ctx, manufacturer)
	if err != nil {
		return nil, err
	}
	dt, err := s.inv.GetOrCreateDeviceType(ctx, deviceModel, m.ID)
	if err != nil {
		return nil, err
	}
	site, err := s.inv.GetOrCreateSite(ctx, util.FirstNonEmpty(dev.Site, "unassigned"))
	if err != nil {
		return nil, err
	}
	role, err := s.inv.GetOrCreateDeviceRole(ctx, util.FirstNonEmpty(dev.Role, "network"))
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":        name,
		"device_type": dt.ID,
		"role":        role.ID,
		"site":        site.ID,
		"status":      "active",
	}
	if dev.Platform != "" {
		platform, err := s.inv.GetOrCreatePlatform(ctx, string(dev.Platform))
		if err != nil {
			return nil, err
		}
		fields["platform"] = platform.ID
	}
	if res.Info != nil && res.Info.Serial != "" {
		fields["serial"] = res.Info.Serial
	}
	return s.inv.CreateDevice(ctx, fields)
}
