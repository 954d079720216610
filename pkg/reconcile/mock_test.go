package reconcile

import (
	"context"
	"fmt"
	"net/url"

	"github.com/netsync-network/netsync/pkg/inventory"
)

// mockInventory is an in-memory NetBox double. Writes are recorded so
// tests can assert both the plan and what was actually touched.
type mockInventory struct {
	nextID     int
	devices    map[string]*inventory.Device
	interfaces map[int][]*inventory.Interface
	ips        map[string]*inventory.IPAddress
	vlans      []*inventory.VLAN
	items      map[int][]*inventory.InventoryItem
	cables     []*inventory.Cable
	writes     []string
}

func newMockInventory() *mockInventory {
	return &mockInventory{
		nextID:     100,
		devices:    make(map[string]*inventory.Device),
		interfaces: make(map[int][]*inventory.Interface),
		ips:        make(map[string]*inventory.IPAddress),
		items:      make(map[int][]*inventory.InventoryItem),
	}
}

func (m *mockInventory) id() int {
	m.nextID++
	return m.nextID
}

func (m *mockInventory) record(format string, args ...interface{}) {
	m.writes = append(m.writes, fmt.Sprintf(format, args...))
}

func (m *mockInventory) GetDeviceByName(_ context.Context, name string) (*inventory.Device, error) {
	return m.devices[name], nil
}

func (m *mockInventory) CreateDevice(_ context.Context, fields map[string]interface{}) (*inventory.Device, error) {
	name, _ := fields["name"].(string)
	d := &inventory.Device{ID: m.id(), Name: name, Status: &inventory.Choice{Value: "active"}}
	if s, ok := fields["serial"].(string); ok {
		d.Serial = s
	}
	m.devices[name] = d
	m.record("create device %s", name)
	return d, nil
}

func (m *mockInventory) UpdateDevice(_ context.Context, id int, fields map[string]interface{}) error {
	m.record("update device %d %v", id, fields)
	for _, d := range m.devices {
		if d.ID == id {
			if s, ok := fields["serial"].(string); ok {
				d.Serial = s
			}
			if ip, ok := fields["primary_ip4"].(int); ok {
				d.PrimaryIP4 = &inventory.Ref{ID: ip}
			}
		}
	}
	return nil
}

func (m *mockInventory) DeleteDevice(_ context.Context, id int) error {
	m.record("delete device %d", id)
	return nil
}

func (m *mockInventory) ListInterfaces(_ context.Context, deviceID int) ([]*inventory.Interface, error) {
	return m.interfaces[deviceID], nil
}

func (m *mockInventory) CreateInterface(_ context.Context, fields map[string]interface{}) (*inventory.Interface, error) {
	name, _ := fields["name"].(string)
	deviceID, _ := fields["device"].(int)
	i := &inventory.Interface{ID: m.id(), Name: name, Device: &inventory.Ref{ID: deviceID}}
	applyInterfaceFields(i, fields)
	m.interfaces[deviceID] = append(m.interfaces[deviceID], i)
	m.record("create interface %s", name)
	return i, nil
}

func (m *mockInventory) UpdateInterface(_ context.Context, id int, fields map[string]interface{}) error {
	m.record("update interface %d %v", id, fields)
	for _, intfs := range m.interfaces {
		for _, i := range intfs {
			if i.ID == id {
				applyInterfaceFields(i, fields)
			}
		}
	}
	return nil
}

// applyInterfaceFields mirrors writes into the stored record so a
// second reconcile diffs against what the first one wrote.
func applyInterfaceFields(i *inventory.Interface, fields map[string]interface{}) {
	if v, ok := fields["description"].(string); ok {
		i.Description = v
	}
	if v, ok := fields["mtu"].(int); ok {
		i.MTU = v
	}
	if v, ok := fields["mac_address"].(string); ok {
		i.MACAddress = v
	}
	if v, ok := fields["enabled"].(bool); ok {
		b := v
		i.Enabled = &b
	}
	if v, ok := fields["type"].(string); ok {
		i.Type = &inventory.Choice{Value: v}
	}
	if v, ok := fields["mode"].(string); ok {
		i.Mode = &inventory.Choice{Value: v}
	}
	if v, ok := fields["untagged_vlan"].(int); ok {
		i.UntaggedVLAN = &inventory.Ref{ID: v}
	}
	if v, ok := fields["tagged_vlans"].([]int); ok {
		refs := make([]inventory.Ref, 0, len(v))
		for _, id := range v {
			refs = append(refs, inventory.Ref{ID: id})
		}
		i.TaggedVLANs = refs
	}
}

func (m *mockInventory) DeleteInterface(_ context.Context, id int) error {
	m.record("delete interface %d", id)
	return nil
}

func (m *mockInventory) ListIPAddresses(_ context.Context, _ url.Values) ([]*inventory.IPAddress, error) {
	var out []*inventory.IPAddress
	for _, a := range m.ips {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockInventory) GetIPByAddress(_ context.Context, cidr string) (*inventory.IPAddress, error) {
	return m.ips[cidr], nil
}

func (m *mockInventory) CreateIPAddress(_ context.Context, fields map[string]interface{}) (*inventory.IPAddress, error) {
	addr, _ := fields["address"].(string)
	a := &inventory.IPAddress{ID: m.id(), Address: addr}
	if id, ok := fields["assigned_object_id"].(int); ok {
		a.AssignedObjectID = id
		a.AssignedObjectType = "dcim.interface"
	}
	m.ips[addr] = a
	m.record("create ip %s", addr)
	return a, nil
}

func (m *mockInventory) UpdateIPAddress(_ context.Context, id int, fields map[string]interface{}) error {
	m.record("update ip %d %v", id, fields)
	for _, a := range m.ips {
		if a.ID == id {
			if oid, ok := fields["assigned_object_id"].(int); ok {
				a.AssignedObjectID = oid
			}
		}
	}
	return nil
}

func (m *mockInventory) DeleteIPAddress(_ context.Context, id int) error {
	m.record("delete ip %d", id)
	return nil
}

func (m *mockInventory) ListVLANs(_ context.Context, _ int) ([]*inventory.VLAN, error) {
	return m.vlans, nil
}

func (m *mockInventory) CreateVLAN(_ context.Context, fields map[string]interface{}) (*inventory.VLAN, error) {
	vid, _ := fields["vid"].(int)
	name, _ := fields["name"].(string)
	v := &inventory.VLAN{ID: m.id(), VID: vid, Name: name}
	if siteID, ok := fields["site"].(int); ok {
		v.Site = &inventory.Ref{ID: siteID}
	}
	m.vlans = append(m.vlans, v)
	m.record("create vlan %d", vid)
	return v, nil
}

func (m *mockInventory) ListInventoryItems(_ context.Context, deviceID int) ([]*inventory.InventoryItem, error) {
	return m.items[deviceID], nil
}

func (m *mockInventory) CreateInventoryItems(_ context.Context, items []map[string]interface{}) error {
	for _, fields := range items {
		name, _ := fields["name"].(string)
		deviceID, _ := fields["device"].(int)
		item := &inventory.InventoryItem{ID: m.id(), Name: name, Discovered: true}
		if s, ok := fields["serial"].(string); ok {
			item.Serial = s
		}
		if s, ok := fields["part_id"].(string); ok {
			item.PartID = s
		}
		if s, ok := fields["description"].(string); ok {
			item.Description = s
		}
		m.items[deviceID] = append(m.items[deviceID], item)
		m.record("create item %s", name)
	}
	return nil
}

func (m *mockInventory) UpdateInventoryItem(_ context.Context, id int, fields map[string]interface{}) error {
	m.record("update item %d %v", id, fields)
	return nil
}

func (m *mockInventory) DeleteInventoryItem(_ context.Context, id int) error {
	m.record("delete item %d", id)
	return nil
}

func (m *mockInventory) ListCables(_ context.Context, _ int) ([]*inventory.Cable, error) {
	return m.cables, nil
}

func (m *mockInventory) CreateCable(_ context.Context, a, b int) (*inventory.Cable, error) {
	cb := &inventory.Cable{
		ID:            m.id(),
		ATerminations: []inventory.CableTermination{{ObjectType: "dcim.interface", ObjectID: a}},
		BTerminations: []inventory.CableTermination{{ObjectType: "dcim.interface", ObjectID: b}},
	}
	m.cables = append(m.cables, cb)
	m.record("create cable %d-%d", a, b)
	return cb, nil
}

func (m *mockInventory) DeleteCable(_ context.Context, id int) error {
	m.record("delete cable %d", id)
	return nil
}

func (m *mockInventory) GetOrCreateManufacturer(_ context.Context, name string) (*inventory.Manufacturer, error) {
	return &inventory.Manufacturer{ID: 1, Name: name}, nil
}

func (m *mockInventory) GetOrCreateDeviceType(_ context.Context, model string, _ int) (*inventory.DeviceType, error) {
	return &inventory.DeviceType{ID: 2, Model: model}, nil
}

func (m *mockInventory) GetOrCreateSite(_ context.Context, name string) (*inventory.Site, error) {
	return &inventory.Site{ID: 3, Name: name}, nil
}

func (m *mockInventory) GetOrCreateDeviceRole(_ context.Context, name string) (*inventory.DeviceRole, error) {
	return &inventory.DeviceRole{ID: 4, Name: name}, nil
}

func (m *mockInventory) GetOrCreatePlatform(_ context.Context, name string) (*inventory.DevicePlatform, error) {
	return &inventory.DevicePlatform{ID: 5, Name: name}, nil
}
