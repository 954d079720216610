package inventory

// Read-side records mirror the API's nested shape; write payloads are
// built as flat maps with numeric foreign keys by the callers.

// Ref is a nested related object: enough identity to match on, nothing
// more.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Choice is a status/mode field: a machine value plus a display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Device is one dcim/devices record.
type Device struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	DeviceType *Ref    `json:"device_type,omitempty"`
	Role       *Ref    `json:"role,omitempty"`
	Site       *Ref    `json:"site,omitempty"`
	Serial     string  `json:"serial,omitempty"`
	Status     *Choice `json:"status,omitempty"`
	PrimaryIP4 *Ref    `json:"primary_ip4,omitempty"`
	Platform   *Ref    `json:"platform,omitempty"`
}

// Interface is one dcim/interfaces record.
type Interface struct {
	ID           int     `json:"id"`
	Device       *Ref    `json:"device,omitempty"`
	Name         string  `json:"name"`
	Type         *Choice `json:"type,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	MTU          int     `json:"mtu,omitempty"`
	MACAddress   string  `json:"mac_address,omitempty"`
	Description  string  `json:"description,omitempty"`
	Mode         *Choice `json:"mode,omitempty"`
	UntaggedVLAN *Ref    `json:"untagged_vlan,omitempty"`
	TaggedVLANs  []Ref   `json:"tagged_vlans,omitempty"`
	LAG          *Ref    `json:"lag,omitempty"`
}

// IPAddress is one ipam/ip-addresses record. Address is CIDR form.
type IPAddress struct {
	ID                 int     `json:"id"`
	Address            string  `json:"address"`
	Status             *Choice `json:"status,omitempty"`
	AssignedObjectType string  `json:"assigned_object_type,omitempty"`
	AssignedObjectID   int     `json:"assigned_object_id,omitempty"`
	Description        string  `json:"description,omitempty"`
}

// VLAN is one ipam/vlans record.
type VLAN struct {
	ID     int     `json:"id"`
	VID    int     `json:"vid"`
	Name   string  `json:"name"`
	Site   *Ref    `json:"site,omitempty"`
	Status *Choice `json:"status,omitempty"`
}

// InventoryItem is one dcim/inventory-items record.
type InventoryItem struct {
	ID           int    `json:"id"`
	Device       *Ref   `json:"device,omitempty"`
	Name         string `json:"name"`
	Manufacturer *Ref   `json:"manufacturer,omitempty"`
	PartID       string `json:"part_id,omitempty"`
	Serial       string `json:"serial,omitempty"`
	Description  string `json:"description,omitempty"`
	Discovered   bool   `json:"discovered,omitempty"`
}

// CableTermination is one end of a cable.
type CableTermination struct {
	ObjectType string `json:"object_type"`
	ObjectID   int    `json:"object_id"`
}

// Cable is one dcim/cables record. Terminations are unordered: a cable
// between A and B equals a cable between B and A.
type Cable struct {
	ID            int                `json:"id"`
	Status        *Choice            `json:"status,omitempty"`
	ATerminations []CableTermination `json:"a_terminations,omitempty"`
	BTerminations []CableTermination `json:"b_terminations,omitempty"`
}

// SameEnds reports whether the cable joins the two interface IDs,
// regardless of which side each sits on.
func (c *Cable) SameEnds(a, b int) bool {
	ids := func(ts []CableTermination) (int, bool) {
		if len(ts) != 1 || ts[0].ObjectType != "dcim.interface" {
			return 0, false
		}
		return ts[0].ObjectID, true
	}
	x, okA := ids(c.ATerminations)
	y, okB := ids(c.BTerminations)
	if !okA || !okB {
		return false
	}
	return (x == a && y == b) || (x == b && y == a)
}

// Manufacturer, DeviceType, Site, and DeviceRole share the Ref shape on
// reads; they get their own names for the get-or-create paths.
type Manufacturer = Ref
type DeviceType struct {
	ID           int    `json:"id"`
	Model        string `json:"model"`
	Slug         string `json:"slug"`
	Manufacturer *Ref   `json:"manufacturer,omitempty"`
}
type Site = Ref
type DeviceRole = Ref
type DevicePlatform = Ref
