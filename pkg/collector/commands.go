package collector

import (
	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/parser"
)

// Primary and enrichment command tables, keyed by template family.
// These are closed: a platform missing from a table means that entity
// or enrichment is skipped on that platform.

var versionCommands = map[string]string{
	"ios":   "show version",
	"nxos":  "show version",
	"eos":   "show version",
	"qtech": "show version",
}

var macTableCommands = map[string]string{
	"ios":   "show mac address-table",
	"nxos":  "show mac address-table",
	"eos":   "show mac address-table",
	"qtech": "show mac-address-table",
}

var interfaceCommands = map[string]string{
	"ios":   "show interfaces",
	"nxos":  "show interface",
	"eos":   "show interfaces",
	"qtech": "show interface",
}

var lldpCommands = map[string]string{
	"ios":   "show lldp neighbors detail",
	"nxos":  "show lldp neighbors detail",
	"eos":   "show lldp neighbors detail",
	"qtech": "show lldp neighbors detail",
}

var cdpCommands = map[string]string{
	"ios":  "show cdp neighbors detail",
	"nxos": "show cdp neighbors detail",
}

var inventoryCommands = map[string]string{
	"ios":  "show inventory",
	"nxos": "show inventory",
	"eos":  "show inventory",
}

var lagCommands = map[string]string{
	"ios":   "show etherchannel summary",
	"nxos":  "show port-channel summary",
	"eos":   "show port-channel summary",
	"qtech": "show aggregatePort summary",
}

var switchportCommands = map[string]string{
	"ios":   "show interfaces switchport",
	"eos":   "show interfaces switchport",
	"nxos":  "show interface switchport",
	"qtech": "show interface switchport",
}

var transceiverCommands = map[string]string{
	"nxos":  "show interface transceiver",
	"qtech": "show interface transceiver",
}

var statusCommands = map[string]string{
	"nxos": "show interface status",
}

var runningConfigCommands = map[string]string{
	"ios":   "show running-config",
	"nxos":  "show running-config",
	"eos":   "show running-config",
	"qtech": "show running-config",
}

// commandFor looks up a platform's command in a table.
func commandFor(table map[string]string, platform model.Platform) (string, bool) {
	cmd, ok := table[parser.Family(platform)]
	return cmd, ok
}
