package collector

import (
	"context"
	"testing"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// fakeSession replays canned command output. Commands without a canned
// reply are rejected the way a device rejects unknown syntax.
type fakeSession struct {
	hostname string
	replies  map[string]string
	sent     []string
	closed   bool
}

func (f *fakeSession) Send(_ context.Context, command string) (string, error) {
	f.sent = append(f.sent, command)
	out, ok := f.replies[command]
	if !ok {
		return "", util.NewCommandError(f.hostname, command, "% Invalid input detected")
	}
	return out, nil
}

func (f *fakeSession) Hostname() string { return f.hostname }
func (f *fakeSession) Close() error     { f.closed = true; return nil }

func fakeDialer(sessions map[string]*fakeSession, errs map[string]error) Dialer {
	return func(_ context.Context, device model.Device, _ model.Credentials) (Session, error) {
		if err, ok := errs[device.Host]; ok {
			return nil, err
		}
		return sessions[device.Host], nil
	}
}

const iosInterfacesOut = `GigabitEthernet0/1 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet, address is 0011.aabb.ccdd (bia 0011.aabb.ccdd)
  Description: uplink to core
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec,
  Full-duplex, 1000Mb/s, media type is 10/100/1000BaseTX
GigabitEthernet0/2 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet, address is 0011.aabb.ccde (bia 0011.aabb.ccde)
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec,
  Full-duplex, 1000Mb/s, media type is 10/100/1000BaseTX
Vlan30 is up, line protocol is up
  Hardware is EtherSVI, address is 0011.aabb.ccff (bia 0011.aabb.ccff)
  Internet address is 10.177.30.2/24
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec,
`

const iosEtherchannelOut = `Flags:  D - down        P - bundled in port-channel
        S - Layer2      U - in use

Group  Port-channel  Protocol    Ports
------+-------------+-----------+-----------------------------------------------
1      Po1(SU)         LACP      Gi0/1(P)
`

const iosSwitchportOut = `Name: Gi0/1
Switchport: Enabled
Administrative Mode: trunk
Operational Mode: trunk
Trunking Native Mode VLAN: 1 (default)
Trunking VLANs Enabled: ALL

Name: Gi0/2
Switchport: Enabled
Administrative Mode: static access
Operational Mode: static access
Access Mode VLAN: 30 (default)
Trunking Native Mode VLAN: 1 (default)
`

const iosVersionOut = `Cisco IOS XE Software, Version 16.12.04
Cisco IOS Software [Gibraltar], Catalyst L3 Switch Software

access-sw1 uptime is 1 week, 2 days, 3 hours
System image file is "flash:packages.conf"

cisco WS-C3850-48T (MIPS) processor with 4194304K bytes of physical memory.
Processor board ID FCW1234A5BC
`

const iosMACOut = `          Mac Address Table
-------------------------------------------

Vlan    Mac Address       Type        Ports
----    -----------       --------    -----
  30    0011.aabb.ccdd    DYNAMIC     Gi0/1
  30    0011.aabb.ccde    DYNAMIC     Gi0/2
  30    0011.aabb.ccdd    DYNAMIC     Gi0/1
`

const iosLLDPOut = `------------------------------------------------
Local Intf: Gi0/1
Chassis id: 0050.5600.aaaa
Port id: Eth1/49
Port Description: to-access-sw1
System Name: core-sw1.corp.example.com

System Capabilities: B,R
Management Addresses:
    IP: 10.0.0.2
`

const iosInventoryOut = `NAME: "Switch 1", DESCR: "WS-C3850-48T"
PID: WS-C3850-48T      , VID: V07  , SN: FCW1234A5BC
`

func iosFake() *fakeSession {
	return &fakeSession{
		hostname: "access-sw1",
		replies: map[string]string{
			"show interfaces":            iosInterfacesOut,
			"show etherchannel summary":  iosEtherchannelOut,
			"show interfaces switchport": iosSwitchportOut,
			"show version":               iosVersionOut,
			"show mac address-table":     iosMACOut,
			"show lldp neighbors detail": iosLLDPOut,
			"show inventory":             iosInventoryOut,
		},
	}
}

func TestCollectInterfacesEnriched(t *testing.T) {
	sess := iosFake()
	device := model.Device{Host: "10.0.0.10", Platform: model.PlatformCiscoIOSXE}
	c := New(Options{})

	intfs, err := c.collectInterfaces(context.Background(), device, sess)
	if err != nil {
		t.Fatalf("collectInterfaces: %v", err)
	}
	if len(intfs) != 3 {
		t.Fatalf("got %d interfaces, want 3", len(intfs))
	}
	byName := map[string]*model.Interface{}
	for _, i := range intfs {
		byName[i.Name] = i
	}

	gi1 := byName["GigabitEthernet0/1"]
	if gi1 == nil {
		t.Fatal("GigabitEthernet0/1 missing")
	}
	if gi1.LAG != "Port-channel1" {
		t.Errorf("Gi0/1 LAG = %q, want Port-channel1", gi1.LAG)
	}
	if gi1.Mode != model.ModeTaggedAll {
		t.Errorf("Gi0/1 mode = %q, want tagged-all", gi1.Mode)
	}
	if gi1.UntaggedVLAN != 1 {
		t.Errorf("Gi0/1 untagged = %d, want 1", gi1.UntaggedVLAN)
	}
	if gi1.Hostname != "access-sw1" || gi1.DeviceIP != "10.0.0.10" {
		t.Errorf("Gi0/1 device context = %q/%q", gi1.Hostname, gi1.DeviceIP)
	}

	gi2 := byName["GigabitEthernet0/2"]
	if gi2.Mode != model.ModeAccess || gi2.UntaggedVLAN != 30 {
		t.Errorf("Gi0/2 mode = %q vlan %d, want access/30", gi2.Mode, gi2.UntaggedVLAN)
	}
	if gi2.LAG != "" {
		t.Errorf("Gi0/2 LAG = %q, want empty", gi2.LAG)
	}

	svi := byName["Vlan30"]
	if svi.IPAddress != "10.177.30.2" || svi.PrefixLength != 24 {
		t.Errorf("Vlan30 address = %s/%d", svi.IPAddress, svi.PrefixLength)
	}
}

func TestCollectDeviceFull(t *testing.T) {
	sess := iosFake()
	device := model.Device{Host: "10.0.0.10", Platform: model.PlatformCiscoIOSXE}
	c := New(Options{Dial: fakeDialer(map[string]*fakeSession{"10.0.0.10": sess}, nil)})

	res := c.CollectDevice(context.Background(), device)
	if !res.OK() {
		t.Fatalf("device failed: %v", res.Err)
	}
	if res.Hostname != "access-sw1" {
		t.Errorf("hostname = %q", res.Hostname)
	}
	if res.Info == nil || res.Info.Serial != "FCW1234A5BC" || res.Info.Version != "16.12.04" {
		t.Errorf("device info = %+v", res.Info)
	}
	if res.Info.Manufacturer != "Cisco" {
		t.Errorf("manufacturer = %q", res.Info.Manufacturer)
	}
	// Duplicate (vlan, mac) rows collapse.
	if len(res.MACTable) != 2 {
		t.Errorf("got %d MAC entries, want 2", len(res.MACTable))
	}
	if len(res.Neighbors) != 1 {
		t.Fatalf("got %d neighbors, want 1", len(res.Neighbors))
	}
	n := res.Neighbors[0]
	if n.RemoteHostname != "core-sw1" || n.Protocol != "lldp" {
		t.Errorf("neighbor = %+v", n)
	}
	if len(res.Inventory) != 1 || res.Inventory[0].Manufacturer != "Cisco" {
		t.Errorf("inventory = %+v", res.Inventory)
	}
	// The SVI address is derived into the IP entity.
	if len(res.IPs) != 1 || res.IPs[0].WithPrefix != "10.177.30.2/24" {
		t.Errorf("ips = %+v", res.IPs)
	}
	// CDP has no canned reply; that is a warning, not a failure.
	if !sess.closed {
		t.Error("session not closed")
	}
}

const nxosInterfaceOut = `Ethernet1/1 is up
admin state is up, Dedicated Interface
  Hardware: 100/1000/10000 Ethernet, address: 0050.5600.0001 (bia 0050.5600.0001)
  Description: to-spine1
  MTU 9216 bytes, BW 10000000 Kbit , DLY 10 usec
  full-duplex, 10 Gb/s, media type is 10G
`

const nxosStatusOut = `--------------------------------------------------------------------------------
Port          Name               Status    Vlan      Duplex  Speed   Type
--------------------------------------------------------------------------------
Eth1/1        to-spine1          connected trunk     full    10G     10Gbase-LR
`

const nxosXcvrOut = `Ethernet1/1
    transceiver is present
    type is 10Gbase-LR
    name is CISCO-FINISAR
    part number is FTLX1474D3BCL-CS
    serial number is FNS12345678
`

const nxosInventoryOut = `NAME: "Chassis", DESCR: "Nexus9000 C93180YC-EX chassis"
PID: N9K-C93180YC-EX   , VID: V02  , SN: FDO22221111
`

func TestCollectNXOSMediaAndTransceivers(t *testing.T) {
	sess := &fakeSession{
		hostname: "spine-leaf1",
		replies: map[string]string{
			"show interface":             nxosInterfaceOut,
			"show interface status":      nxosStatusOut,
			"show interface transceiver": nxosXcvrOut,
			"show inventory":             nxosInventoryOut,
		},
	}
	device := model.Device{Host: "10.0.0.20", Platform: model.PlatformCiscoNXOS}
	c := New(Options{})

	intfs, err := c.collectInterfaces(context.Background(), device, sess)
	if err != nil {
		t.Fatalf("collectInterfaces: %v", err)
	}
	if len(intfs) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(intfs))
	}
	// The detail output only says "10G"; the status column carries the
	// optic and wins, flipping the resolved type to 10gbase-lr.
	if intfs[0].MediaType != "10Gbase-LR" {
		t.Errorf("media = %q, want 10Gbase-LR", intfs[0].MediaType)
	}
	if got := intfs[0].NetBoxType(); got != "10gbase-lr" {
		t.Errorf("netbox type = %q, want 10gbase-lr", got)
	}

	items, err := c.collectInventory(context.Background(), device, sess)
	if err != nil {
		t.Fatalf("collectInventory: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d inventory items, want 2", len(items))
	}
	xcvr := items[1]
	if xcvr.Name != "Transceiver Ethernet1/1" {
		t.Errorf("transceiver name = %q", xcvr.Name)
	}
	if xcvr.Manufacturer != "Cisco" {
		t.Errorf("transceiver manufacturer = %q", xcvr.Manufacturer)
	}
	if xcvr.Serial != "FNS12345678" {
		t.Errorf("transceiver serial = %q", xcvr.Serial)
	}
}

func TestDerivePortMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		trunking string
		access   string
		native   string
		want     model.SwitchportMode
		untagged int
		tagged   int
	}{
		{"trunk all word", "trunk", "ALL", "", "1", model.ModeTaggedAll, 1, 0},
		{"trunk full range", "trunk", "1-4094", "", "1", model.ModeTaggedAll, 1, 0},
		{"trunk empty list", "trunk", "", "", "99", model.ModeTaggedAll, 99, 0},
		{"trunk explicit list", "trunk", "10,20,30", "", "1", model.ModeTagged, 1, 3},
		{"static access", "static access", "", "41", "1", model.ModeAccess, 41, 0},
		{"dynamic auto", "dynamic auto", "", "1", "1", model.ModeUnset, 0, 0},
		{"tunnel", "dot1q-tunnel", "", "1", "1", model.ModeUnset, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := derivePortMode(tt.mode, tt.trunking, tt.access, tt.native)
			if pm.mode != tt.want {
				t.Fatalf("mode = %q, want %q", pm.mode, tt.want)
			}
			if pm.untagged != tt.untagged {
				t.Errorf("untagged = %d, want %d", pm.untagged, tt.untagged)
			}
			if len(pm.tagged) != tt.tagged {
				t.Errorf("tagged = %v, want %d entries", pm.tagged, tt.tagged)
			}
		})
	}
}

func TestCollectDeviceAuthFailure(t *testing.T) {
	device := model.Device{Host: "10.0.0.99", Platform: model.PlatformCiscoIOS}
	c := New(Options{Dial: fakeDialer(nil, map[string]error{
		"10.0.0.99": util.NewAuthenticationError("10.0.0.99", "svc"),
	})})

	res := c.CollectDevice(context.Background(), device)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if util.IsRetryable(res.Err) {
		t.Error("auth failure must not be retryable")
	}
	if !res.Attempted {
		t.Error("device was attempted")
	}
}
