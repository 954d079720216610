package util

import (
	"sort"
	"strconv"
	"strings"
)

// SplitCommaSeparated splits a comma-separated string and trims whitespace
// from each element. Empty input returns nil.
func SplitCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Truncate returns s shortened to at most n bytes, with "..." appended
// when anything was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ExpandVLANRange expands vendor VLAN list syntax ("1,10-12,30") into
// sorted ints. Malformed elements are skipped.
func ExpandVLANRange(s string) []int {
	var vids []int
	seen := make(map[int]bool)
	for _, part := range SplitCommaSeparated(s) {
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || start > end {
				continue
			}
			for v := start; v <= end; v++ {
				if !seen[v] {
					seen[v] = true
					vids = append(vids, v)
				}
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if !seen[v] {
			seen[v] = true
			vids = append(vids, v)
		}
	}
	sort.Ints(vids)
	return vids
}

// FirstNonEmpty returns the first non-empty string of its arguments.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
