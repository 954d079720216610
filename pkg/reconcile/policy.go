package reconcile

import (
	"regexp"
	"strings"

	"github.com/netsync-network/netsync/pkg/util"
)

// Entity kind names, in apply order.
const (
	EntityDevices        = "devices"
	EntityInterfaces     = "interfaces"
	EntityIPs            = "ip_addresses"
	EntityVLANs          = "vlans"
	EntityInventoryItems = "inventory_items"
	EntityCables         = "cables"
)

// EntityPolicy controls what reconciliation may touch for one entity
// kind. A field missing from Fields is enabled; an explicit false
// freezes it. Sources renames the collected field a value is copied
// from; Defaults fills a field on create when the collected value is
// empty (disabled fields get only their default). Deletes happen only
// for objects whose name matches DeletePattern — an empty pattern
// means this run never deletes the entity.
type EntityPolicy struct {
	Fields        map[string]bool        `yaml:"fields"`
	Sources       map[string]string      `yaml:"sources"`
	Defaults      map[string]interface{} `yaml:"defaults"`
	DeletePattern string                 `yaml:"delete_pattern"`

	deleteRe *regexp.Regexp
}

// Policy is the per-entity field policy for a run. The zero value
// allows every field and no deletes.
type Policy struct {
	Entities map[string]*EntityPolicy `yaml:"entities"`
}

// Compile validates every delete pattern up front so a bad regex fails
// the run before any write happens.
func (p *Policy) Compile() error {
	for entity, ep := range p.Entities {
		if ep == nil || ep.DeletePattern == "" {
			continue
		}
		re, err := regexp.Compile(ep.DeletePattern)
		if err != nil {
			return util.NewConfigError("policy", entity+".delete_pattern", err)
		}
		ep.deleteRe = re
	}
	return nil
}

// FieldEnabled reports whether the policy allows writing a field.
func (p *Policy) FieldEnabled(entity, field string) bool {
	if p == nil || p.Entities == nil {
		return true
	}
	ep := p.Entities[entity]
	if ep == nil || ep.Fields == nil {
		return true
	}
	enabled, ok := ep.Fields[field]
	if !ok {
		return true
	}
	return enabled
}

// FieldSource returns the collected field a value is copied from, or
// "" when the field reads under its own name.
func (p *Policy) FieldSource(entity, field string) string {
	if p == nil || p.Entities == nil {
		return ""
	}
	ep := p.Entities[entity]
	if ep == nil {
		return ""
	}
	return ep.Sources[field]
}

// FieldDefault returns the create-time default for a field.
func (p *Policy) FieldDefault(entity, field string) (interface{}, bool) {
	if p == nil || p.Entities == nil {
		return nil, false
	}
	ep := p.Entities[entity]
	if ep == nil || ep.Defaults == nil {
		return nil, false
	}
	v, ok := ep.Defaults[field]
	return v, ok
}

// AllowDelete reports whether the policy allows deleting the named
// object of an entity kind.
func (p *Policy) AllowDelete(entity, name string) bool {
	if p == nil || p.Entities == nil {
		return false
	}
	ep := p.Entities[entity]
	if ep == nil || ep.DeletePattern == "" {
		return false
	}
	if ep.deleteRe == nil {
		// Compile was skipped; match conservatively against the raw
		// pattern as a literal.
		return strings.Contains(name, ep.DeletePattern)
	}
	return ep.deleteRe.MatchString(name)
}
