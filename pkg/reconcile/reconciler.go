package reconcile

import (
	"context"
	"net/url"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/netsync-network/netsync/pkg/canon"
	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// Inventory is the slice of the NetBox client the reconciler consumes.
// *inventory.Client satisfies it.
type Inventory interface {
	GetDeviceByName(ctx context.Context, name string) (*inventory.Device, error)
	CreateDevice(ctx context.Context, fields map[string]interface{}) (*inventory.Device, error)
	UpdateDevice(ctx context.Context, id int, fields map[string]interface{}) error
	DeleteDevice(ctx context.Context, id int) error

	ListInterfaces(ctx context.Context, deviceID int) ([]*inventory.Interface, error)
	CreateInterface(ctx context.Context, fields map[string]interface{}) (*inventory.Interface, error)
	UpdateInterface(ctx context.Context, id int, fields map[string]interface{}) error
	DeleteInterface(ctx context.Context, id int) error

	ListIPAddresses(ctx context.Context, filter url.Values) ([]*inventory.IPAddress, error)
	GetIPByAddress(ctx context.Context, cidr string) (*inventory.IPAddress, error)
	CreateIPAddress(ctx context.Context, fields map[string]interface{}) (*inventory.IPAddress, error)
	UpdateIPAddress(ctx context.Context, id int, fields map[string]interface{}) error
	DeleteIPAddress(ctx context.Context, id int) error

	ListVLANs(ctx context.Context, siteID int) ([]*inventory.VLAN, error)
	CreateVLAN(ctx context.Context, fields map[string]interface{}) (*inventory.VLAN, error)

	ListInventoryItems(ctx context.Context, deviceID int) ([]*inventory.InventoryItem, error)
	CreateInventoryItems(ctx context.Context, items []map[string]interface{}) error
	UpdateInventoryItem(ctx context.Context, id int, fields map[string]interface{}) error
	DeleteInventoryItem(ctx context.Context, id int) error

	ListCables(ctx context.Context, deviceID int) ([]*inventory.Cable, error)
	CreateCable(ctx context.Context, aInterfaceID, bInterfaceID int) (*inventory.Cable, error)
	DeleteCable(ctx context.Context, id int) error

	GetOrCreateManufacturer(ctx context.Context, name string) (*inventory.Manufacturer, error)
	GetOrCreateDeviceType(ctx context.Context, model string, manufacturerID int) (*inventory.DeviceType, error)
	GetOrCreateSite(ctx context.Context, name string) (*inventory.Site, error)
	GetOrCreateDeviceRole(ctx context.Context, name string) (*inventory.DeviceRole, error)
	GetOrCreatePlatform(ctx context.Context, name string) (*inventory.DevicePlatform, error)
}

// Syncer reconciles collection results into the inventory.
type Syncer struct {
	inv    Inventory
	policy *Policy
	dryRun bool
}

// New builds a Syncer. A nil policy allows every field and no deletes.
func New(inv Inventory, policy *Policy, dryRun bool) (*Syncer, error) {
	if policy == nil {
		policy = &Policy{}
	}
	if err := policy.Compile(); err != nil {
		return nil, err
	}
	return &Syncer{inv: inv, policy: policy, dryRun: dryRun}, nil
}

// vlanKey is VLAN identity: the site slug plus the VID. Global VLANs
// carry the empty slug.
type vlanKey struct {
	site string
	vid  int
}

// runState carries identities resolved earlier in the run so later
// entity phases can reference them.
type runState struct {
	report *Report
	errs   *multierror.Error

	// hostname -> NetBox device; only devices that exist (or were
	// created this run) appear.
	devices map[string]*inventory.Device
	// hostname -> canonical interface name -> NetBox interface.
	interfaces map[string]map[string]*inventory.Interface
	// hostname -> site slug, from the run's device list.
	sites map[string]string
	// site slug -> configured site name, for VLAN creation.
	siteNames map[string]string
	// VLAN records by (site slug, vid). Duplicate keys in the inventory
	// keep the first record seen; duplicates are never deleted here.
	vlans map[vlanKey]*inventory.VLAN
}

// vlanFor resolves a VID against the device's site first, then the
// global VLANs.
func (st *runState) vlanFor(site string, vid int) (*inventory.VLAN, bool) {
	if v, ok := st.vlans[vlanKey{site: site, vid: vid}]; ok {
		return v, true
	}
	v, ok := st.vlans[vlanKey{vid: vid}]
	return v, ok
}

// Sync reconciles every successfully collected device, entity kind by
// entity kind: devices, interfaces, IP addresses, VLANs, inventory
// items, cables. Within each kind creates apply before updates, then
// deletes. Cancellation is re-checked between entity kinds; the partial
// report is kept. Write failures are collected, not fatal: the report
// always covers the whole run.
func (s *Syncer) Sync(ctx context.Context, devices []model.Device, results []*collector.DeviceResult) (*Report, error) {
	st := &runState{
		report:     &Report{DryRun: s.dryRun},
		devices:    make(map[string]*inventory.Device),
		interfaces: make(map[string]map[string]*inventory.Interface),
		sites:      make(map[string]string),
		siteNames:  make(map[string]string),
		vlans:      make(map[vlanKey]*inventory.VLAN),
	}

	byHost := make(map[string]model.Device, len(devices))
	for _, d := range devices {
		byHost[d.Host] = d
	}
	var ok []*collector.DeviceResult
	for _, r := range results {
		if r.OK() && r.Hostname != "" {
			ok = append(ok, r)
		}
	}
	for _, r := range ok {
		site := byHost[r.Host].Site
		slug := canon.Slug(site)
		st.sites[hostnameOf(r)] = slug
		if slug != "" {
			st.siteNames[slug] = site
		}
	}

	existing, err := s.inv.ListVLANs(ctx, 0)
	if err != nil {
		return st.report, err
	}
	for _, v := range existing {
		key := vlanKey{site: vlanSiteSlug(v), vid: v.VID}
		if _, dup := st.vlans[key]; !dup {
			st.vlans[key] = v
		}
	}

	phases := []func(){
		func() {
			for _, r := range ok {
				s.reconcileDevice(ctx, st, byHost[r.Host], r)
			}
		},
		func() {
			for _, r := range ok {
				s.reconcileInterfaces(ctx, st, r)
			}
		},
		func() {
			for _, r := range ok {
				s.reconcileIPs(ctx, st, r)
			}
		},
		func() { s.reconcileVLANs(ctx, st, ok) },
		func() {
			for _, r := range ok {
				s.reconcileInventoryItems(ctx, st, r)
			}
		},
		func() { s.reconcileCables(ctx, st, ok) },
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			st.errs = multierror.Append(st.errs, err)
			break
		}
		phase()
	}

	for _, e := range st.errs.WrappedErrors() {
		st.report.Errors = append(st.report.Errors, e.Error())
	}
	util.WithOperation("sync").Infof("reconcile finished: %s", st.report.Summary(false))
	return st.report, st.errs.ErrorOrNil()
}

// vlanSiteSlug is the site identity of a stored VLAN, "" for global.
func vlanSiteSlug(v *inventory.VLAN) string {
	if v.Site == nil {
		return ""
	}
	if v.Site.Slug != "" {
		return v.Site.Slug
	}
	return canon.Slug(v.Site.Name)
}

// commit records a change and, outside dry runs, applies it
// immediately so later phases can use the identities it produced.
func (s *Syncer) commit(ctx context.Context, st *runState, entity string, c *ObjectChange) {
	st.report.entity(entity).add(c)
	if s.dryRun || c.apply == nil || c.Type == ChangeSkip {
		return
	}
	if err := c.apply(ctx); err != nil {
		c.Error = err.Error()
		st.errs = multierror.Append(st.errs, err)
	}
}

// skipUnchanged records the skip that keeps an unchanged object
// visible in the diff.
func (s *Syncer) skipUnchanged(ctx context.Context, st *runState, entity, object string, id int) {
	s.commit(ctx, st, entity, &ObjectChange{
		Type:   ChangeSkip,
		Object: object,
		ID:     id,
		Reason: "no changes",
	})
}

// fieldSet accumulates field-level diffs under the field policy.
type fieldSet struct {
	syncer *Syncer
	entity string
	raw    map[string]string // collected raw row, feeds source renames
	fields []FieldChange
	data   map[string]interface{}
}

func (s *Syncer) newFieldSet(entity string) *fieldSet {
	return &fieldSet{syncer: s, entity: entity, data: make(map[string]interface{})}
}

// diff records a change when the collected value differs and is
// non-empty. Empty collected values mean "unknown" for most fields and
// never clear inventory data.
func (f *fieldSet) diff(field string, old, new interface{}) {
	if isZero(new) {
		return
	}
	f.diffAlways(field, old, new)
}

// diffAlways records a change whenever the values differ, including an
// empty collected value overriding a stale one. Descriptions use this:
// a cleared port description must clear in the inventory too.
func (f *fieldSet) diffAlways(field string, old, new interface{}) {
	if !f.syncer.policy.FieldEnabled(f.entity, field) {
		return
	}
	if equal(old, new) {
		return
	}
	f.fields = append(f.fields, FieldChange{Field: field, Old: old, New: new})
	f.data[field] = new
}

// set writes a payload field without diff bookkeeping (create paths).
// A source rename reads the value off the raw row instead; a disabled
// or empty field falls back to the policy default when one exists.
func (f *fieldSet) set(field string, v interface{}) {
	policy := f.syncer.policy
	if !policy.FieldEnabled(f.entity, field) {
		if def, ok := policy.FieldDefault(f.entity, field); ok {
			f.data[field] = def
		}
		return
	}
	if src := policy.FieldSource(f.entity, field); src != "" && f.raw[src] != "" {
		v = f.raw[src]
	}
	if isZero(v) {
		if def, ok := policy.FieldDefault(f.entity, field); ok {
			f.data[field] = def
		}
		return
	}
	f.data[field] = v
}

func (f *fieldSet) empty() bool { return len(f.fields) == 0 }

func isZero(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case int:
		return t == 0
	case bool:
		return false
	case []int:
		return len(t) == 0
	}
	return false
}

func equal(a, b interface{}) bool {
	return cmp.Equal(a, b)
}
