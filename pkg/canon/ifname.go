package canon

import (
	"sort"
	"strings"
)

// ifPrefix is one interface-name family: the canonical long prefix, its
// conventional short prefix, and any extra vendor spellings of the long
// form.
type ifPrefix struct {
	long     string
	short    string
	variants []string
}

// The closed prefix table. Order does not matter here; lookups go
// through spellings sorted longest-first so "TenGigabitEthernet" wins
// over "Ethernet" and "Twe" over "Te".
var ifPrefixes = []ifPrefix{
	{long: "TwentyFiveGigE", short: "Twe", variants: []string{"TwentyFiveGigabitEthernet"}},
	{long: "HundredGigE", short: "Hu", variants: []string{"HundredGigabitEthernet"}},
	{long: "TenGigabitEthernet", short: "Te"},
	{long: "FortyGigabitEthernet", short: "Fo"},
	{long: "GigabitEthernet", short: "Gi"},
	{long: "FastEthernet", short: "Fa"},
	{long: "TFGigabitEthernet", short: "TF"},
	{long: "AggregatePort", short: "Ag"},
	{long: "Port-channel", short: "Po", variants: []string{"Port-Channel", "port-channel"}},
	{long: "Ethernet", short: "Eth"},
	{long: "Vlan", short: "Vlan", variants: []string{"VLAN"}},
	{long: "Loopback", short: "Lo"},
	{long: "Tunnel", short: "Tu"},
	{long: "mgmt", short: "mgmt", variants: []string{"Management", "Ma"}},
}

// spelling pairs one case-folded prefix spelling with its table entry.
type spelling struct {
	text  string
	entry *ifPrefix
}

var ifSpellings = buildSpellings()

func buildSpellings() []spelling {
	var all []spelling
	for i := range ifPrefixes {
		e := &ifPrefixes[i]
		names := append([]string{e.long, e.short}, e.variants...)
		for _, n := range names {
			all = append(all, spelling{text: strings.ToLower(n), entry: e})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return len(all[i].text) > len(all[j].text)
	})
	return all
}

// splitIfName splits an interface name into its table entry and the
// numeric remainder ("0/1", "1/0/24.100"). QTech-style names with a
// space between prefix and number ("TFGigabitEthernet 0/1") are
// accepted. Returns nil when no prefix matches.
func splitIfName(name string) (*ifPrefix, string) {
	trimmed := strings.TrimSpace(name)
	folded := strings.ToLower(trimmed)
	for _, sp := range ifSpellings {
		if !strings.HasPrefix(folded, sp.text) {
			continue
		}
		rest := strings.TrimLeft(trimmed[len(sp.text):], " ")
		if rest == "" && sp.text == folded {
			return sp.entry, ""
		}
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return sp.entry, rest
		}
	}
	return nil, ""
}

// LongName returns the canonical long form of an interface name
// ("Gi0/1" → "GigabitEthernet0/1"). Unrecognized names are returned
// trimmed but otherwise unchanged.
func LongName(name string) string {
	entry, rest := splitIfName(name)
	if entry == nil {
		return strings.TrimSpace(name)
	}
	return entry.long + rest
}

// ShortName returns the conventional short alias
// ("GigabitEthernet0/1" → "Gi0/1").
func ShortName(name string) string {
	entry, rest := splitIfName(name)
	if entry == nil {
		return strings.TrimSpace(name)
	}
	return entry.short + rest
}

// Aliases returns every known spelling of an interface name, including
// the vendor variants and the space-separated QTech forms. The first
// element is the canonical long name. Unrecognized names alias only to
// themselves.
func Aliases(name string) []string {
	entry, rest := splitIfName(name)
	if entry == nil {
		return []string{strings.TrimSpace(name)}
	}
	prefixes := append([]string{entry.long, entry.short}, entry.variants...)
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, p := range prefixes {
		add(p + rest)
		if rest != "" {
			add(p + " " + rest)
		}
	}
	return out
}
