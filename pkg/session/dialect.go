// Package session holds a single authenticated interactive SSH
// connection to one network device. A session is created per collector
// invocation and closed on every exit path; acquisition retries live
// here and nowhere above.
package session

import (
	"regexp"

	"github.com/netsync-network/netsync/pkg/model"
)

// Dialect captures how a platform family's CLI behaves: the paging
// knob, the privilege escalation command, and the prompt shape.
type Dialect struct {
	Name          string
	DisablePaging string
	EnableCommand string
	PromptPattern *regexp.Regexp
}

var (
	// IOS-style prompt: "hostname>", "hostname#", "hostname(config)#"
	iosPrompt = regexp.MustCompile(`(?m)^[\w.\-]+(?:\([\w\-]+\))?[>#]\s*$`)
	// JunOS operational prompt: "user@hostname>"
	junosPrompt = regexp.MustCompile(`(?m)^[\w.\-]+@[\w.\-]+[>%#]\s*$`)
)

var (
	dialectIOSXE = Dialect{
		Name:          "cisco_iosxe",
		DisablePaging: "terminal length 0",
		EnableCommand: "enable",
		PromptPattern: iosPrompt,
	}
	dialectNXOS = Dialect{
		Name:          "cisco_nxos",
		DisablePaging: "terminal length 0",
		EnableCommand: "enable",
		PromptPattern: iosPrompt,
	}
	dialectIOSXR = Dialect{
		Name:          "cisco_iosxr",
		DisablePaging: "terminal length 0",
		EnableCommand: "enable",
		PromptPattern: iosPrompt,
	}
	dialectEOS = Dialect{
		Name:          "arista_eos",
		DisablePaging: "terminal length 0",
		EnableCommand: "enable",
		PromptPattern: iosPrompt,
	}
	dialectJunOS = Dialect{
		Name:          "juniper_junos",
		DisablePaging: "set cli screen-length 0",
		EnableCommand: "",
		PromptPattern: junosPrompt,
	}
	// QTech QSW switches speak an IOS-compatible CLI.
	dialectQTech = Dialect{
		Name:          "qtech_qsw",
		DisablePaging: "terminal length 0",
		EnableCommand: "enable",
		PromptPattern: iosPrompt,
	}
)

// dialects is the closed platform → dialect table. Unknown platforms
// fall back to the IOS-XE dialect.
var dialects = map[model.Platform]Dialect{
	model.PlatformCiscoIOS:   dialectIOSXE,
	model.PlatformCiscoIOSXE: dialectIOSXE,
	model.PlatformCiscoNXOS:  dialectNXOS,
	model.PlatformCiscoIOSXR: dialectIOSXR,
	model.PlatformAristaEOS:  dialectEOS,
	model.PlatformJuniper:    dialectJunOS,
	model.PlatformQTech:      dialectQTech,
	model.PlatformQTechQSW:   dialectQTech,
}

// DialectFor returns the CLI dialect for a platform tag.
func DialectFor(platform model.Platform) Dialect {
	if d, ok := dialects[platform]; ok {
		return d
	}
	return dialectIOSXE
}
