// Package parser turns raw device CLI output into rows of raw fields.
// A registry maps (platform family, command) to a template parser; a
// per-command regex fallback recovers the minimum fields when no
// template matches. Both return raw string maps — normalization is the
// caller's job.
package parser

import (
	"strings"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// Row is one parsed record with raw, template-defined key names.
type Row = map[string]string

// ParseFunc parses one command's raw output.
type ParseFunc func(raw string) []Row

type key struct {
	family  string
	command string
}

// registry is the closed template library, populated by the per-family
// files in this package.
var registry = map[key]ParseFunc{}

func register(family, command string, fn ParseFunc) {
	registry[key{family, command}] = fn
}

// Family folds a platform tag onto its template family.
func Family(platform model.Platform) string {
	switch platform {
	case model.PlatformCiscoIOS, model.PlatformCiscoIOSXE:
		return "ios"
	case model.PlatformCiscoNXOS:
		return "nxos"
	case model.PlatformCiscoIOSXR:
		return "iosxr"
	case model.PlatformAristaEOS:
		return "eos"
	case model.PlatformJuniper:
		return "junos"
	case model.PlatformQTech, model.PlatformQTechQSW:
		return "qtech"
	}
	return "ios"
}

// Parse runs the template for (platform, command) over raw output. When
// no template exists or the template yields nothing, the regex fallback
// runs; when that also produces nothing, a ParseError is returned along
// with the (empty) row list.
func Parse(platform model.Platform, command, raw string) ([]Row, error) {
	family := Family(platform)
	if fn, ok := registry[key{family, command}]; ok {
		if rows := fn(raw); len(rows) > 0 {
			return rows, nil
		}
	}
	if rows := Fallback(command, raw); len(rows) > 0 {
		return rows, nil
	}
	return nil, util.NewParseError(string(platform), command)
}

// HasTemplate reports whether a template is registered for the pair.
func HasTemplate(platform model.Platform, command string) bool {
	_, ok := registry[key{Family(platform), command}]
	return ok
}

// splitBlocks splits output into blocks that start at lines matching
// the given predicate. Text before the first block start is dropped.
func splitBlocks(raw string, starts func(line string) bool) []string {
	var blocks []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if starts(line) {
			flush()
			cur = []string{line}
			continue
		}
		if cur != nil {
			cur = append(cur, line)
		}
	}
	flush()
	return blocks
}

// kv extracts "Key: value" pairs from a block, keyed by the lowercased,
// underscored key name.
func kv(block string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		k = strings.ReplaceAll(k, " ", "_")
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
