// Package model defines the typed domain records the normalizers emit.
// Parsers produce raw string maps; the FromRaw constructors in this
// package are the single gate where heterogeneous vendor key names are
// resolved to one schema. Nothing in this package performs I/O.
package model

import "strings"

// Platform tags form a closed set. Aliased tags (ios/iosxe, the two
// qtech spellings) share a session dialect; see pkg/session.
type Platform string

const (
	PlatformCiscoIOS   Platform = "cisco_ios"
	PlatformCiscoIOSXE Platform = "cisco_iosxe"
	PlatformCiscoNXOS  Platform = "cisco_nxos"
	PlatformCiscoIOSXR Platform = "cisco_iosxr"
	PlatformAristaEOS  Platform = "arista_eos"
	PlatformJuniper    Platform = "juniper_junos"
	PlatformQTech      Platform = "qtech"
	PlatformQTechQSW   Platform = "qtech_qsw"
)

// DeviceStatus is the registry's view of a device.
type DeviceStatus string

const (
	DeviceEnabled DeviceStatus = "enabled"
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceError   DeviceStatus = "error"
)

// Device is a snapshot from the external device registry. The core
// never mutates the registry; it only consumes these.
type Device struct {
	Host     string            `json:"host" yaml:"host"`
	Platform Platform          `json:"platform" yaml:"platform"`
	Model    string            `json:"model,omitempty" yaml:"model,omitempty"`
	Role     string            `json:"role,omitempty" yaml:"role,omitempty"`
	Site     string            `json:"site,omitempty" yaml:"site,omitempty"`
	Status   DeviceStatus      `json:"status,omitempty" yaml:"status,omitempty"`
	Meta     map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Credentials are supplied per run and never persisted by the core.
type Credentials struct {
	Username string
	Password string
	Secret   string // enable/privilege secret, optional
}

// DeviceInfo is the catalog record collected from "show version".
type DeviceInfo struct {
	Hostname     string `json:"hostname" mapstructure:"hostname"`
	MgmtIP       string `json:"mgmt_ip" mapstructure:"mgmt_ip"`
	Platform     string `json:"platform" mapstructure:"platform"`
	Model        string `json:"model" mapstructure:"model"`
	Serial       string `json:"serial" mapstructure:"serial"`
	Version      string `json:"version" mapstructure:"version"`
	Uptime       string `json:"uptime" mapstructure:"uptime"`
	Manufacturer string `json:"manufacturer" mapstructure:"manufacturer"`
	Status       string `json:"status" mapstructure:"status"`
}

// NormalizePlatform folds free-form platform strings onto the closed
// tag set; unknown strings are returned lowercased as-is.
func NormalizePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cisco_ios", "ios", "cisco-ios":
		return PlatformCiscoIOS
	case "cisco_iosxe", "iosxe", "ios-xe", "cisco_xe":
		return PlatformCiscoIOSXE
	case "cisco_nxos", "nxos", "nx-os", "cisco_nexus":
		return PlatformCiscoNXOS
	case "cisco_iosxr", "iosxr", "ios-xr":
		return PlatformCiscoIOSXR
	case "arista_eos", "eos", "arista":
		return PlatformAristaEOS
	case "juniper_junos", "junos", "juniper":
		return PlatformJuniper
	case "qtech":
		return PlatformQTech
	case "qtech_qsw", "qsw":
		return PlatformQTechQSW
	}
	return Platform(strings.ToLower(strings.TrimSpace(s)))
}
