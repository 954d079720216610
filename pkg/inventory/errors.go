package inventory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/netsync-network/netsync/pkg/util"
)

// APIError is a non-2xx response from the inventory API. Server-side
// failures are retriable, client-side ones are terminal.
type APIError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inventory API %s %s: status %d: %s",
		e.Method, e.Path, e.Status, util.Truncate(e.Body, 200))
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool { return e.Status >= 500 }

// ValidationError is a 400 response carrying per-field messages. Always
// terminal; the write is reported and skipped, never retried.
type ValidationError struct {
	Path   string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, util.Truncate(strings.Join(e.Fields[k], "; "), 200)))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("inventory API %s: validation failed", e.Path)
	}
	return fmt.Sprintf("inventory API %s: validation failed: %s", e.Path, strings.Join(parts, ", "))
}

// Retryable marks validation failures terminal.
func (e *ValidationError) Retryable() bool { return false }

// newValidationError decodes NetBox's field-error body. A body that is
// not the expected shape degrades to a bare validation error.
func newValidationError(path string, body []byte) *ValidationError {
	fields := make(map[string][]string)
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err == nil {
		for k, v := range m {
			var msgs []string
			if json.Unmarshal(v, &msgs) == nil {
				fields[k] = msgs
				continue
			}
			var one string
			if json.Unmarshal(v, &one) == nil {
				fields[k] = []string{one}
			}
		}
	}
	return &ValidationError{Path: path, Fields: fields}
}
