package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// MissingParamsError lists required tool parameters that were not given.
type MissingParamsError struct {
	Names []string
}

func (e *MissingParamsError) Error() string {
	msgs := make([]string, len(e.Names))
	for i, name := range e.Names {
		msgs[i] = fmt.Sprintf("required parameter %q is missing", name)
	}
	return strings.Join(msgs, "; ")
}

// CheckRequired reports required parameters of schema that are absent or
// blank in values.
func CheckRequired(values map[string]string, schema *jsonschema.Schema) error {
	if schema == nil {
		return nil
	}

	var missing []string
	for _, name := range schema.Required {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParamsError{Names: missing}
	}
	return nil
}

// ParseArguments converts string values, as typed by a user, into tool
// arguments. Each value is converted according to its property type in
// schema and inferred when the property is unknown or untyped. Values that
// do not parse as their declared type are passed on as strings so the
// server can report them. Blank values are omitted.
func ParseArguments(values map[string]string, schema *jsonschema.Schema) map[string]any {
	args := make(map[string]any, len(values))
	for name, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}

		var prop *jsonschema.Schema
		if schema != nil {
			prop = schema.Properties[name]
		}
		args[name] = ParseValue(value, propertyType(prop))
	}
	return args
}

// ParseValue converts one string to the JSON type named by typ ("integer",
// "number", "boolean", "array", "object", "string"); any other typ infers.
func ParseValue(value, typ string) any {
	switch strings.ToLower(typ) {
	case "integer":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		return value
	case "number":
		if f, ok := parseFloat(value); ok {
			return f
		}
		return value
	case "boolean":
		if b, ok := parseBool(value); ok {
			return b
		}
		return value
	case "array":
		if v, ok := parseJSON(value); ok {
			return v
		}
		parts := strings.Split(value, ",")
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = strings.TrimSpace(p)
		}
		return items
	case "object":
		if v, ok := parseJSON(value); ok {
			return v
		}
		return value
	case "string":
		return value
	default:
		return inferValue(value)
	}
}

func inferValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, ok := parseFloat(value); ok {
		return f
	}

	bracketed := strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]")
	braced := strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}")
	if bracketed || braced {
		if v, ok := parseJSON(value); ok {
			return v
		}
	}
	return value
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}

// parseFloat rejects NaN and infinities, which have no JSON form.
func parseFloat(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseJSON decodes value as a single JSON document, keeping numbers exact.
func parseJSON(value string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return v, true
}

func propertyType(prop *jsonschema.Schema) string {
	if prop == nil {
		return ""
	}
	if prop.Type != "" {
		return prop.Type
	}
	for _, t := range prop.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}
