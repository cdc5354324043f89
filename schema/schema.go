package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Type is the declared semantic type of a parameter or return value.
type Type string

// Supported types. Any accepts every value unchanged.
const (
	Any     Type = ""
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
	Object  Type = "object"
	Array   Type = "array"
)

// Valid reports whether t is one of the supported types.
func (t Type) Valid() bool {
	switch t {
	case Any, String, Integer, Number, Boolean, Object, Array:
		return true
	default:
		return false
	}
}

// String returns the JSON Schema name of the type.
func (t Type) String() string {
	if t == Any {
		return "any"
	}
	return string(t)
}

// Param declares one handler parameter.
type Param struct {
	Name        string
	Type        Type
	Description string
	// Default is used when the argument is absent. Nil marks the parameter as required.
	Default any
}

// Required reports whether the parameter has no default.
func (p Param) Required() bool {
	return p.Default == nil
}

// Params is an ordered parameter list.
type Params []Param

// Names returns the parameter names in declaration order.
func (ps Params) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a parameter by name.
func (ps Params) Lookup(name string) (Param, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks the declaration itself: names are non-empty and unique,
// types are known and defaults coerce to their declared type.
func (ps Params) Validate() error {
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.Name == "" {
			return fmt.Errorf("param %d: empty name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("param %q: declared twice", p.Name)
		}
		seen[p.Name] = true

		if !p.Type.Valid() {
			return fmt.Errorf("param %q: unknown type %q", p.Name, string(p.Type))
		}
		if p.Default != nil {
			if _, err := Coerce(p.Type, p.Default); err != nil {
				return fmt.Errorf("param %q: default: %w", p.Name, err)
			}
		}
	}
	return nil
}

// JSONSchema renders the parameter list as an object schema.
func (ps Params) JSONSchema() (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(ps)),
	}

	for _, p := range ps {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Type == Array {
			prop.Items = &jsonschema.Schema{}
		}
		if p.Required() {
			s.Required = append(s.Required, p.Name)
		} else {
			def, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("param %q: marshal default: %w", p.Name, err)
			}
			prop.Default = def
		}
		s.Properties[p.Name] = prop
	}

	return s, nil
}
