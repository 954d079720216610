package reconcile

import (
	"context"
	"strings"
	"testing"

	"github.com/netsync-network/netsync/pkg/collector"
	"github.com/netsync-network/netsync/pkg/inventory"
	"github.com/netsync-network/netsync/pkg/model"
)

func testDevices() []model.Device {
	return []model.Device{
		{Host: "10.0.0.10", Platform: model.PlatformCiscoIOSXE, Site: "hq", Role: "access"},
	}
}

// collectedSW1 is one successfully collected access switch: a trunked
// uplink is absent on purpose, the interesting port is an access port
// in VLAN 30 plus the SVI carrying the VLAN's gateway address.
func collectedSW1() *collector.DeviceResult {
	gi1 := &model.Interface{
		Name:         "GigabitEthernet0/1",
		ShortName:    "Gi0/1",
		Hostname:     "sw1",
		DeviceIP:     "10.0.0.10",
		AdminStatus:  "up",
		OperStatus:   "up",
		Description:  "uplink",
		MAC:          "0011aabbccdd",
		MTU:          1500,
		Mode:         model.ModeAccess,
		UntaggedVLAN: 30,
		MediaType:    "10/100/1000BaseTX",
	}
	svi := &model.Interface{
		Name:         "Vlan30",
		ShortName:    "Vlan30",
		Hostname:     "sw1",
		DeviceIP:     "10.0.0.10",
		AdminStatus:  "up",
		OperStatus:   "up",
		IPAddress:    "10.177.30.213",
		PrefixLength: 24,
		MTU:          1500,
		HardwareType: "EtherSVI",
	}
	return &collector.DeviceResult{
		Host:       "10.0.0.10",
		Hostname:   "sw1",
		Platform:   model.PlatformCiscoIOSXE,
		Attempted:  true,
		Info:       &model.DeviceInfo{Hostname: "sw1", Serial: "SER1", Model: "WS-C3850-48T", Manufacturer: "Cisco"},
		Interfaces: []*model.Interface{gi1, svi},
		IPs:        []*model.IPAddress{model.IPFromInterface(svi)},
	}
}

func mustSyncer(t *testing.T, inv Inventory, policy *Policy, dryRun bool) *Syncer {
	t.Helper()
	s, err := New(inv, policy, dryRun)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSyncCreatesEverythingFirstRun(t *testing.T) {
	mock := newMockInventory()
	// VLAN 30 pre-exists so the access port's untagged assignment can
	// resolve in the same run.
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	devs := report.entity(EntityDevices)
	if len(devs.Creates) != 1 {
		t.Fatalf("device creates = %d, want 1", len(devs.Creates))
	}
	intfs := report.entity(EntityInterfaces)
	if len(intfs.Creates) != 2 {
		t.Fatalf("interface creates = %d, want 2", len(intfs.Creates))
	}
	ips := report.entity(EntityIPs)
	if len(ips.Creates) != 1 {
		t.Fatalf("ip creates = %d, want 1", len(ips.Creates))
	}

	dev := mock.devices["sw1"]
	if dev == nil || dev.Serial != "SER1" {
		t.Fatalf("device not created: %+v", dev)
	}
	created := mock.ips["10.177.30.213/24"]
	if created == nil {
		t.Fatal("SVI address not created")
	}
	if created.AssignedObjectID == 0 {
		t.Error("SVI address not assigned to the interface")
	}
	// The access port picked up the untagged VLAN reference.
	var gi1 *inventory.Interface
	for _, i := range mock.interfaces[dev.ID] {
		if i.Name == "GigabitEthernet0/1" {
			gi1 = i
		}
	}
	if gi1 == nil || gi1.UntaggedVLAN == nil || gi1.UntaggedVLAN.ID != 201 {
		t.Errorf("untagged vlan not assigned: %+v", gi1)
	}
}

func TestSyncDryRunTouchesNothing(t *testing.T) {
	mock := newMockInventory()
	s := mustSyncer(t, mock, nil, true)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.TotalChanges() == 0 {
		t.Error("dry run planned no changes")
	}
	if len(mock.writes) != 0 {
		t.Errorf("dry run wrote to the inventory: %v", mock.writes)
	}
	if !report.DryRun {
		t.Error("report not marked dry run")
	}
}

func TestSyncSecondRunIsClean(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	first := mustSyncer(t, mock, nil, false)
	if _, err := first.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	second := mustSyncer(t, mock, nil, false)
	report, err := second.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if got := report.TotalChanges(); got != 0 {
		t.Errorf("second run planned %d changes, want 0:\n%s", got, report.FormatDetailed(true))
	}
	// Converged objects still appear in the diff, as skips: the device,
	// both interfaces, the SVI address, and the referenced VLAN.
	if got := report.TotalSkips(); got == 0 {
		t.Fatal("second run recorded no skips; unchanged objects fell out of the diff")
	}
	for _, tc := range []struct {
		entity string
		want   int
	}{
		{EntityDevices, 1},
		{EntityInterfaces, 2},
		{EntityIPs, 1},
		{EntityVLANs, 1},
	} {
		if got := len(report.entity(tc.entity).Skips); got != tc.want {
			t.Errorf("%s skips = %d, want %d:\n%s", tc.entity, got, tc.want, report.FormatDetailed(true))
		}
	}
	for _, d := range report.Results {
		for _, c := range d.Skips {
			if c.Reason == "" {
				t.Errorf("%s skip %s has no reason", d.Entity, c.Object)
			}
		}
	}
}

func TestSyncEmptyDescriptionOverrides(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	// Converge once, then stamp a stale description into the inventory
	// and clear it on the device.
	first := mustSyncer(t, mock, nil, false)
	if _, err := first.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	dev := mock.devices["sw1"]
	var gi1 *inventory.Interface
	for _, i := range mock.interfaces[dev.ID] {
		if i.Name == "GigabitEthernet0/1" {
			gi1 = i
		}
	}
	gi1.Description = "OLD"

	res := collectedSW1()
	res.Interfaces[0].Description = ""

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{res})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	updates := report.entity(EntityInterfaces).Updates
	if len(updates) != 1 {
		t.Fatalf("interface updates = %d, want 1:\n%s", len(updates), report.FormatDetailed(true))
	}
	fc := updates[0].Fields[0]
	if fc.Field != "description" || fc.Old != "OLD" || fc.New != "" {
		t.Errorf("field change = %+v, want description OLD -> empty", fc)
	}
	if gi1.Description != "" {
		t.Errorf("description not cleared: %q", gi1.Description)
	}
}

func TestSyncDuplicateVIDPicksFirstAndNeverDeletes(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans,
		&inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"},
		&inventory.VLAN{ID: 202, VID: 30, Name: "vlan30-dup"},
	)

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n := len(report.entity(EntityVLANs).Creates); n != 0 {
		t.Errorf("vlan creates = %d, want 0", n)
	}
	if n := len(report.entity(EntityVLANs).Deletes); n != 0 {
		t.Errorf("vlan deletes = %d, want 0", n)
	}
	for _, w := range mock.writes {
		if strings.HasPrefix(w, "create vlan") {
			t.Errorf("unexpected write: %s", w)
		}
	}
	dev := mock.devices["sw1"]
	for _, i := range mock.interfaces[dev.ID] {
		if i.Name == "GigabitEthernet0/1" && (i.UntaggedVLAN == nil || i.UntaggedVLAN.ID != 201) {
			t.Errorf("untagged vlan = %+v, want first duplicate (201)", i.UntaggedVLAN)
		}
	}
}

func TestSyncDeletePatternGatesInterfaceDeletes(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	first := mustSyncer(t, mock, nil, false)
	if _, err := first.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	dev := mock.devices["sw1"]
	mock.interfaces[dev.ID] = append(mock.interfaces[dev.ID],
		&inventory.Interface{ID: 900, Name: "Vlan99"},
		&inventory.Interface{ID: 901, Name: "GigabitEthernet0/9"},
	)

	policy := &Policy{Entities: map[string]*EntityPolicy{
		EntityInterfaces: {DeletePattern: `^Vlan`},
	}}
	s := mustSyncer(t, mock, policy, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	intfs := report.entity(EntityInterfaces)
	if len(intfs.Deletes) != 1 || intfs.Deletes[0].ID != 900 {
		t.Fatalf("deletes = %+v, want only Vlan99", intfs.Deletes)
	}
	foundSkip := false
	for _, skip := range intfs.Skips {
		if skip.ID == 901 {
			foundSkip = true
		}
	}
	if !foundSkip {
		t.Error("unmatched stale interface not reported as skip")
	}
	for _, w := range mock.writes {
		if w == "delete interface 901" {
			t.Error("protected interface was deleted")
		}
	}
}

func TestSyncCablesCreateAndScope(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	devices := []model.Device{
		{Host: "10.0.0.10", Platform: model.PlatformCiscoIOSXE, Site: "hq"},
		{Host: "10.0.0.11", Platform: model.PlatformCiscoIOSXE, Site: "hq"},
	}
	sw1 := collectedSW1()
	sw1.Neighbors = []*model.Neighbor{{
		LocalInterface: "GigabitEthernet0/1",
		RemoteHostname: "sw2",
		RemotePort:     "Gi0/2",
		Protocol:       "lldp",
		Type:           model.NeighborByHostname,
	}}
	sw2 := &collector.DeviceResult{
		Host:      "10.0.0.11",
		Hostname:  "sw2",
		Platform:  model.PlatformCiscoIOSXE,
		Attempted: true,
		Info:      &model.DeviceInfo{Hostname: "sw2", Serial: "SER2", Model: "WS-C3850-48T", Manufacturer: "Cisco"},
		Interfaces: []*model.Interface{{
			Name:        "GigabitEthernet0/2",
			AdminStatus: "up",
			MediaType:   "10/100/1000BaseTX",
		}},
		// The same adjacency seen from the other side must not produce
		// a second cable.
		Neighbors: []*model.Neighbor{{
			LocalInterface: "GigabitEthernet0/2",
			RemoteHostname: "sw1",
			RemotePort:     "Gi0/1",
			Protocol:       "lldp",
			Type:           model.NeighborByHostname,
		}},
	}

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), devices, []*collector.DeviceResult{sw1, sw2})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cables := report.entity(EntityCables)
	if len(cables.Creates) != 1 {
		t.Fatalf("cable creates = %d, want 1:\n%s", len(cables.Creates), report.FormatDetailed(true))
	}
	if len(mock.cables) != 1 {
		t.Fatalf("cables in inventory = %d", len(mock.cables))
	}

	// An existing cable with one end outside the collected scope stays.
	outOfScope := &inventory.Cable{
		ID:            555,
		ATerminations: []inventory.CableTermination{{ObjectType: "dcim.interface", ObjectID: 99999}},
		BTerminations: []inventory.CableTermination{{ObjectType: "dcim.interface", ObjectID: mock.cables[0].ATerminations[0].ObjectID}},
	}
	mock.cables = append(mock.cables, outOfScope)

	second := mustSyncer(t, mock, nil, false)
	report2, err := second.Sync(context.Background(), devices, []*collector.DeviceResult{sw1, sw2})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if n := len(report2.entity(EntityCables).Deletes); n != 0 {
		t.Errorf("cable deletes = %d, want 0", n)
	}
	for _, w := range mock.writes {
		if strings.HasPrefix(w, "delete cable") {
			t.Errorf("out-of-scope cable deleted: %s", w)
		}
	}
	// The matched adjacency is not recreated either; it counts as an
	// already-existing cable.
	if n := len(report2.entity(EntityCables).Creates); n != 0 {
		t.Errorf("cable creates on second run = %d, want 0", n)
	}
	skips := report2.entity(EntityCables).Skips
	if len(skips) != 1 || skips[0].Reason != "already exists" {
		t.Errorf("cable skips = %+v, want one already-exists record", skips)
	}
}

func TestSyncVLANIdentityIsSiteScoped(t *testing.T) {
	mock := newMockInventory()
	// VID 30 exists only at another site. The collected device sits at
	// hq, so that record must not satisfy its VLAN reference.
	mock.vlans = append(mock.vlans, &inventory.VLAN{
		ID:   301,
		VID:  30,
		Name: "VLAN30",
		Site: &inventory.Ref{ID: 9, Name: "Branch", Slug: "branch"},
	})

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n := len(report.entity(EntityVLANs).Creates); n != 1 {
		t.Fatalf("vlan creates = %d, want 1 (another site's VID must not match):\n%s",
			n, report.FormatDetailed(true))
	}
	if len(mock.vlans) != 2 {
		t.Fatalf("vlans in inventory = %d, want 2", len(mock.vlans))
	}
	created := mock.vlans[1]
	if created.VID != 30 || created.Site == nil {
		t.Errorf("created vlan = %+v, want VID 30 bound to the device's site", created)
	}

	// A second run resolves the same VID to the new record: no further
	// creates, one already-exists skip.
	second := mustSyncer(t, mock, nil, false)
	report2, err := second.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	vlans := report2.entity(EntityVLANs)
	if n := len(vlans.Creates); n != 0 {
		t.Errorf("vlan creates on second run = %d, want 0", n)
	}
	if len(vlans.Skips) != 1 || vlans.Skips[0].Reason != "already exists" {
		t.Errorf("vlan skips = %+v, want one already-exists record", vlans.Skips)
	}
}

func TestSyncMovesAddressToReportedInterface(t *testing.T) {
	mock := newMockInventory()
	mock.vlans = append(mock.vlans, &inventory.VLAN{ID: 201, VID: 30, Name: "VLAN30"})

	first := mustSyncer(t, mock, nil, false)
	if _, err := first.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	// Rehome the SVI address onto the access port behind the syncer's
	// back; the next run must move it, not duplicate or delete it.
	dev := mock.devices["sw1"]
	var gi1, svi *inventory.Interface
	for _, i := range mock.interfaces[dev.ID] {
		switch i.Name {
		case "GigabitEthernet0/1":
			gi1 = i
		case "Vlan30":
			svi = i
		}
	}
	addr := mock.ips["10.177.30.213/24"]
	addr.AssignedObjectID = gi1.ID

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	ips := report.entity(EntityIPs)
	if len(ips.Creates) != 0 || len(ips.Deletes) != 0 {
		t.Fatalf("creates = %d deletes = %d, want a move only:\n%s",
			len(ips.Creates), len(ips.Deletes), report.FormatDetailed(true))
	}
	if len(ips.Updates) != 1 {
		t.Fatalf("ip updates = %d, want 1:\n%s", len(ips.Updates), report.FormatDetailed(true))
	}
	fc := ips.Updates[0].Fields[0]
	if fc.Field != "assigned_object_id" || fc.New != svi.ID {
		t.Errorf("field change = %+v, want assigned_object_id -> %d", fc, svi.ID)
	}
	if addr.AssignedObjectID != svi.ID {
		t.Errorf("address still on interface %d, want %d", addr.AssignedObjectID, svi.ID)
	}
	if len(mock.ips) != 1 {
		t.Errorf("addresses in inventory = %d, want 1", len(mock.ips))
	}
}

func TestSyncCreateHonorsFieldSourcesAndDefaults(t *testing.T) {
	mock := newMockInventory()
	policy := &Policy{Entities: map[string]*EntityPolicy{
		EntityInterfaces: {
			Fields:   map[string]bool{"mtu": false},
			Sources:  map[string]string{"description": "port_desc"},
			Defaults: map[string]interface{}{"mtu": 9216},
		},
	}}

	res := collectedSW1()
	res.Interfaces[0].Raw = map[string]string{"port_desc": "uplink to core"}

	s := mustSyncer(t, mock, policy, false)
	if _, err := s.Sync(context.Background(), testDevices(), []*collector.DeviceResult{res}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	dev := mock.devices["sw1"]
	var gi1 *inventory.Interface
	for _, i := range mock.interfaces[dev.ID] {
		if i.Name == "GigabitEthernet0/1" {
			gi1 = i
		}
	}
	if gi1 == nil {
		t.Fatal("interface not created")
	}
	// The description came off the renamed raw column, and the disabled
	// mtu field was filled with the configured default instead of the
	// collected 1500.
	if gi1.Description != "uplink to core" {
		t.Errorf("description = %q, want the port_desc source value", gi1.Description)
	}
	if gi1.MTU != 9216 {
		t.Errorf("mtu = %d, want the policy default 9216", gi1.MTU)
	}
}

func TestSyncCancelledContextStopsPhases(t *testing.T) {
	mock := newMockInventory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := mustSyncer(t, mock, nil, false)
	report, err := s.Sync(ctx, testDevices(), []*collector.DeviceResult{collectedSW1()})
	if err == nil {
		t.Fatal("cancelled sync returned no error")
	}
	if got := report.TotalChanges(); got != 0 {
		t.Errorf("cancelled sync planned %d changes:\n%s", got, report.FormatDetailed(true))
	}
	if len(mock.writes) != 0 {
		t.Errorf("cancelled sync wrote to the inventory: %v", mock.writes)
	}
}
