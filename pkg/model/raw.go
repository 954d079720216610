package model

import (
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// resolveKeys rewrites a raw parser row so that every known alias of a
// field lands on its canonical key. Later aliases never overwrite a
// value that an earlier key already set.
func resolveKeys(raw map[string]string, aliases map[string][]string) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for canonical, alts := range aliases {
		if _, ok := out[canonical]; ok {
			continue
		}
		for _, alt := range alts {
			if v, ok := out[alt]; ok && v != "" {
				out[canonical] = v
				break
			}
		}
	}
	return out
}

// decodeRaw decodes an alias-resolved row into a typed record. Weak
// typing lets numeric fields come in as strings, which is all parsers
// ever produce.
func decodeRaw(raw map[string]string, target interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// atoiLoose extracts the leading integer from vendor numeric fields
// ("1000", "1000 Mb/s", "a-1000" are all 1000). Returns 0 when no
// digits are present.
func atoiLoose(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[start:end])
	return n
}
