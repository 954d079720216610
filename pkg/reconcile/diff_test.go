package reconcile

import (
	"strings"
	"testing"
)

func TestDiffResultCounting(t *testing.T) {
	d := &DiffResult{Entity: EntityInterfaces}
	d.add(&ObjectChange{Type: ChangeCreate, Object: "sw1:Gi0/3"})
	d.add(&ObjectChange{Type: ChangeUpdate, Object: "sw1:Gi0/1",
		Fields: []FieldChange{{Field: "description", Old: "OLD", New: ""}}})
	d.add(&ObjectChange{Type: ChangeUpdate, Object: "sw1:Gi0/2",
		Fields: []FieldChange{{Field: "mtu", Old: 1500, New: 9216}}})
	d.add(&ObjectChange{Type: ChangeSkip, Object: "sw1:Gi0/9", Reason: "stale but not covered by delete pattern"})

	if got := d.TotalChanges(); got != 3 {
		t.Errorf("TotalChanges = %d, want 3 (skips excluded)", got)
	}
	if got := d.Summary(false); got != "+1 new ~2 update -0 delete" {
		t.Errorf("Summary = %q", got)
	}
	if got := d.Summary(true); got != "+1 new ~2 update -0 delete =1 skip" {
		t.Errorf("Summary with skips = %q", got)
	}

	out := d.FormatDetailed(true)
	for _, want := range []string{
		"+ sw1:Gi0/3",
		"~ sw1:Gi0/1",
		"description: OLD -> ",
		"= sw1:Gi0/9 (stale but not covered by delete pattern)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed missing %q:\n%s", want, out)
		}
	}
	if out := d.FormatDetailed(false); strings.Contains(out, "sw1:Gi0/9") {
		t.Errorf("skips rendered without showSkips:\n%s", out)
	}
}

func TestPolicyDefaults(t *testing.T) {
	var p *Policy
	if !p.FieldEnabled(EntityInterfaces, "description") {
		t.Error("nil policy must enable every field")
	}
	if p.AllowDelete(EntityInterfaces, "Vlan99") {
		t.Error("nil policy must never delete")
	}

	p = &Policy{Entities: map[string]*EntityPolicy{
		EntityInterfaces: {
			Fields:        map[string]bool{"mtu": false},
			DeletePattern: `^Vlan\d+$`,
		},
	}}
	if err := p.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.FieldEnabled(EntityInterfaces, "mtu") {
		t.Error("disabled field reported enabled")
	}
	if !p.FieldEnabled(EntityInterfaces, "description") {
		t.Error("unlisted field must default to enabled")
	}
	if !p.AllowDelete(EntityInterfaces, "Vlan99") {
		t.Error("pattern match must allow delete")
	}
	if p.AllowDelete(EntityInterfaces, "GigabitEthernet0/9") {
		t.Error("non-matching name must not allow delete")
	}

	bad := &Policy{Entities: map[string]*EntityPolicy{
		EntityInterfaces: {DeletePattern: `([`},
	}}
	if err := bad.Compile(); err == nil {
		t.Error("invalid pattern must fail Compile")
	}
}

func TestPolicySourcesAndDefaults(t *testing.T) {
	var nilPolicy *Policy
	if src := nilPolicy.FieldSource(EntityInterfaces, "description"); src != "" {
		t.Errorf("nil policy source = %q", src)
	}
	if _, ok := nilPolicy.FieldDefault(EntityInterfaces, "mtu"); ok {
		t.Error("nil policy must have no defaults")
	}

	p := &Policy{Entities: map[string]*EntityPolicy{
		EntityInterfaces: {
			Sources:  map[string]string{"description": "port_desc"},
			Defaults: map[string]interface{}{"mtu": 1500},
		},
	}}
	if src := p.FieldSource(EntityInterfaces, "description"); src != "port_desc" {
		t.Errorf("source = %q, want port_desc", src)
	}
	if src := p.FieldSource(EntityInterfaces, "mtu"); src != "" {
		t.Errorf("unlisted source = %q, want empty", src)
	}
	def, ok := p.FieldDefault(EntityInterfaces, "mtu")
	if !ok || def != 1500 {
		t.Errorf("default = %v %v, want 1500 true", def, ok)
	}
	if _, ok := p.FieldDefault(EntityDevices, "mtu"); ok {
		t.Error("default leaked across entities")
	}
}
