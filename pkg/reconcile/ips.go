package reconcile

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
)

// reconcileIPs converges one device's address records. Addresses match
// on the exact CIDR string. An address that exists but sits on another
// interface is moved, never duplicated. The device's management address
// becomes its primary IP once it is assigned.
func (s *Syncer) reconcileIPs(ctx context.Context, st *runState, res *collector.DeviceResult) {
	hostname := hostnameOf(res)
	dev := st.devices[hostname]

	for _, ip := range res.IPs {
		cidr := ip.WithPrefix
		if cidr == "" {
			continue
		}
		existing, err := s.inv.GetIPByAddress(ctx, cidr)
		if err != nil {
			st.errs = multierror.Append(st.errs, err)
			continue
		}

		nbIntf := st.interfaces[hostname][ip.Interface]
		key := objectKey(hostname, cidr)

		if existing == nil {
			data := map[string]interface{}{
				"address": cidr,
				"status":  "active",
			}
			if nbIntf != nil {
				data["assigned_object_type"] = "dcim.interface"
				data["assigned_object_id"] = nbIntf.ID
			}
			c := &ObjectChange{Type: ChangeCreate, Object: key, Data: data}
			isMgmt := ip.Address == res.Host
			c.apply = func(ctx context.Context) error {
				created, err := s.inv.CreateIPAddress(ctx, data)
				if err != nil {
					return err
				}
				if isMgmt && dev != nil {
					return s.setPrimaryIP(ctx, st, hostname, dev.ID, created.ID)
				}
				return nil
			}
			s.commit(ctx, st, EntityIPs, c)
			continue
		}

		// Address exists: move it when the device reports it on a
		// different interface.
		moved := false
		if nbIntf != nil && existing.AssignedObjectID != nbIntf.ID {
			fs := s.newFieldSet(EntityIPs)
			fs.diffAlways("assigned_object_id", existing.AssignedObjectID, nbIntf.ID)
			fs.data["assigned_object_type"] = "dcim.interface"
			if !fs.empty() {
				c := &ObjectChange{
					Type:   ChangeUpdate,
					Object: key,
					ID:     existing.ID,
					Fields: fs.fields,
					Data:   fs.data,
				}
				c.apply = func(ctx context.Context) error {
					return s.inv.UpdateIPAddress(ctx, existing.ID, fs.data)
				}
				s.commit(ctx, st, EntityIPs, c)
				moved = true
			}
		}
		if !moved {
			s.skipUnchanged(ctx, st, EntityIPs, key, existing.ID)
		}

		if ip.Address == res.Host && dev != nil && !isPrimary(dev, existing.ID) {
			if err := s.planPrimaryIP(ctx, st, hostname, dev.ID, existing.ID); err != nil {
				st.errs = multierror.Append(st.errs, err)
			}
		}
	}
}

func isPrimary(dev *inventory.Device, ipID int) bool {
	return dev.PrimaryIP4 != nil && dev.PrimaryIP4.ID == ipID
}

// planPrimaryIP records and applies the primary-address update on the
// device record.
func (s *Syncer) planPrimaryIP(ctx context.Context, st *runState, hostname string, deviceID, ipID int) error {
	c := &ObjectChange{
		Type:   ChangeUpdate,
		Object: hostname,
		ID:     deviceID,
		Fields: []FieldChange{{Field: "primary_ip4", Old: nil, New: ipID}},
		Data:   map[string]interface{}{"primary_ip4": ipID},
	}
	c.apply = func(ctx context.Context) error {
		return s.setPrimaryIP(ctx, st, hostname, deviceID, ipID)
	}
	s.commit(ctx, st, EntityDevices, c)
	return nil
}

func (s *Syncer) setPrimaryIP(ctx context.Context, st *runState, hostname string, deviceID, ipID int) error {
	if err := s.inv.UpdateDevice(ctx, deviceID, map[string]interface{}{"primary_ip4": ipID}); err != nil {
		return err
	}
	if d := st.devices[hostname]; d != nil {
		d.PrimaryIP4 = &inventory.Ref{ID: ipID}
	}
	return nil
}
