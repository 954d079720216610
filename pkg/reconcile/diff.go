// Package reconcile diffs collected device state against the NetBox
// inventory and converges the inventory toward it. Every decision is
// recorded as an ObjectChange before anything is written, so a dry run
// is the same computation with the writes left out.
package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// ChangeType is what the reconciler decided to do with one object.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
	ChangeSkip   ChangeType = "skip"
)

// FieldChange is one field-level difference inside an update.
type FieldChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

// ObjectChange is one planned operation on one inventory object.
type ObjectChange struct {
	Type   ChangeType             `json:"type"`
	Object string                 `json:"object"` // human-readable key, "sw1:Gi0/1"
	ID     int                    `json:"id,omitempty"`
	Fields []FieldChange          `json:"fields,omitempty"`
	Reason string                 `json:"reason,omitempty"` // set on skips
	Error  string                 `json:"error,omitempty"`  // set when the apply failed
	Data   map[string]interface{} `json:"-"`                // write payload

	apply func(ctx context.Context) error
}

// DiffResult collects the planned changes for one entity kind across
// the whole run.
type DiffResult struct {
	Entity  string          `json:"entity"`
	Creates []*ObjectChange `json:"creates,omitempty"`
	Updates []*ObjectChange `json:"updates,omitempty"`
	Deletes []*ObjectChange `json:"deletes,omitempty"`
	Skips   []*ObjectChange `json:"skips,omitempty"`
}

func (d *DiffResult) add(c *ObjectChange) *ObjectChange {
	switch c.Type {
	case ChangeCreate:
		d.Creates = append(d.Creates, c)
	case ChangeUpdate:
		d.Updates = append(d.Updates, c)
	case ChangeDelete:
		d.Deletes = append(d.Deletes, c)
	case ChangeSkip:
		d.Skips = append(d.Skips, c)
	}
	return c
}

// TotalChanges counts the operations that would touch the inventory.
// Skips are informational and excluded.
func (d *DiffResult) TotalChanges() int {
	return len(d.Creates) + len(d.Updates) + len(d.Deletes)
}

// Summary renders the entity's plan as "+N new ~M update -K delete",
// appending the skip count only when asked for.
func (d *DiffResult) Summary(showSkips bool) string {
	s := fmt.Sprintf("+%d new ~%d update -%d delete",
		len(d.Creates), len(d.Updates), len(d.Deletes))
	if showSkips {
		s += fmt.Sprintf(" =%d skip", len(d.Skips))
	}
	return s
}

// FormatDetailed renders every planned change with its field diffs,
// one line per object. Skips appear only when showSkips is set.
func (d *DiffResult) FormatDetailed(showSkips bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.Entity, d.Summary(showSkips))
	for _, c := range d.Creates {
		fmt.Fprintf(&b, "  + %s\n", c.Object)
	}
	for _, c := range d.Updates {
		fmt.Fprintf(&b, "  ~ %s\n", c.Object)
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "      %s: %v -> %v\n", f.Field, f.Old, f.New)
		}
	}
	for _, c := range d.Deletes {
		fmt.Fprintf(&b, "  - %s\n", c.Object)
	}
	if showSkips {
		for _, c := range d.Skips {
			fmt.Fprintf(&b, "  = %s (%s)\n", c.Object, c.Reason)
		}
	}
	return b.String()
}

// Report is the outcome of one reconciliation run, one DiffResult per
// entity in apply order.
type Report struct {
	DryRun  bool          `json:"dry_run"`
	Results []*DiffResult `json:"results"`
	Errors  []string      `json:"errors,omitempty"`
}

// entity returns the result bucket for an entity kind, creating it in
// apply order on first use.
func (r *Report) entity(name string) *DiffResult {
	for _, d := range r.Results {
		if d.Entity == name {
			return d
		}
	}
	d := &DiffResult{Entity: name}
	r.Results = append(r.Results, d)
	return d
}

// TotalChanges counts planned operations across every entity.
func (r *Report) TotalChanges() int {
	n := 0
	for _, d := range r.Results {
		n += d.TotalChanges()
	}
	return n
}

// TotalSkips counts the objects the run left alone, across every
// entity.
func (r *Report) TotalSkips() int {
	n := 0
	for _, d := range r.Results {
		n += len(d.Skips)
	}
	return n
}

// Summary is the run-level one-liner.
func (r *Report) Summary(showSkips bool) string {
	var creates, updates, deletes int
	for _, d := range r.Results {
		creates += len(d.Creates)
		updates += len(d.Updates)
		deletes += len(d.Deletes)
	}
	s := fmt.Sprintf("+%d new ~%d update -%d delete", creates, updates, deletes)
	if showSkips {
		s += fmt.Sprintf(" =%d skip", r.TotalSkips())
	}
	return s
}

// FormatDetailed renders the whole plan.
func (r *Report) FormatDetailed(showSkips bool) string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("dry run: no changes applied\n")
	}
	for _, d := range r.Results {
		b.WriteString(d.FormatDetailed(showSkips))
	}
	return b.String()
}
