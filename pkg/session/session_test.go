package session

import (
	"testing"

	"github.com/netsync-network/netsync/pkg/model"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		platform model.Platform
		want     string
	}{
		{model.PlatformCiscoIOS, "cisco_iosxe"},
		{model.PlatformCiscoIOSXE, "cisco_iosxe"},
		{model.PlatformCiscoNXOS, "cisco_nxos"},
		{model.PlatformAristaEOS, "arista_eos"},
		{model.PlatformJuniper, "juniper_junos"},
		{model.PlatformQTech, "qtech_qsw"},
		{model.PlatformQTechQSW, "qtech_qsw"},
		{model.Platform("something_new"), "cisco_iosxe"}, // fallback
	}
	for _, tt := range tests {
		if got := DialectFor(tt.platform).Name; got != tt.want {
			t.Errorf("DialectFor(%s) = %s, want %s", tt.platform, got, tt.want)
		}
	}
}

func TestHostnameFromPrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"sw1#", "sw1"},
		{"sw1>", "sw1"},
		{"core-sw-01.dc1#", "core-sw-01.dc1"},
		{"sw1(config)#", "sw1"},
		{"admin@edge1>", "edge1"},
		{"  sw1# ", "sw1"},
	}
	for _, tt := range tests {
		if got := hostnameFromPrompt(tt.prompt); got != tt.want {
			t.Errorf("hostnameFromPrompt(%q) = %q, want %q", tt.prompt, got, tt.want)
		}
	}
}

func TestPromptPatterns(t *testing.T) {
	tests := []struct {
		dialect Dialect
		line    string
		match   bool
	}{
		{dialectIOSXE, "sw1#", true},
		{dialectIOSXE, "sw1>", true},
		{dialectIOSXE, "sw1(config-if)#", true},
		{dialectIOSXE, "GigabitEthernet0/1 is up", false},
		{dialectIOSXE, "#comment", false},
		{dialectJunOS, "admin@edge1>", true},
		{dialectJunOS, "edge1#", false},
	}
	for _, tt := range tests {
		if got := tt.dialect.PromptPattern.MatchString(tt.line); got != tt.match {
			t.Errorf("%s prompt match %q = %v, want %v", tt.dialect.Name, tt.line, got, tt.match)
		}
	}
}

func TestStripEcho(t *testing.T) {
	out := "show version\r\nCisco IOS XE Software\r\nsw1#"
	got := stripEcho(out, "show version")
	if got != "Cisco IOS XE Software" {
		t.Errorf("stripEcho = %q", got)
	}
}

func TestRejected(t *testing.T) {
	tests := []struct {
		out  string
		want bool
	}{
		{"% Invalid input detected at '^' marker.", true},
		{"% Incomplete command.", true},
		{"ERROR: bad command", true},
		{"Cisco IOS Software ...", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := rejected(tt.out); got != tt.want {
			t.Errorf("rejected(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}
