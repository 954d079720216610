package gitrepo

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Verify is the decoded form of a verify_ssl setting. The YAML value
// may be a bool, the strings "true"/"false", or a path to a CA bundle
// (which implies verification on). The zero value verifies against the
// system trust store.
type Verify struct {
	Insecure bool   // skip certificate verification
	CAFile   string // extra trust root
}

// ParseVerify coerces the accepted verify_ssl forms.
func ParseVerify(v interface{}) (Verify, error) {
	switch x := v.(type) {
	case nil:
		return Verify{}, nil
	case bool:
		return Verify{Insecure: !x}, nil
	case string:
		switch x {
		case "", "true", "True":
			return Verify{}, nil
		case "false", "False":
			return Verify{Insecure: true}, nil
		default:
			return Verify{CAFile: x}, nil
		}
	default:
		return Verify{}, fmt.Errorf("verify_ssl must be a bool or a CA bundle path, got %T", v)
	}
}

// UnmarshalYAML accepts bool, "true"/"false", or a CA bundle path.
func (v *Verify) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseVerify(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
