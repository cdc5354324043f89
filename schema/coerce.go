package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoercionError reports a value that cannot be converted to a declared type.
type CoercionError struct {
	Param string
	Want  Type
	Value any
}

func (e *CoercionError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("expected %s, got %s", e.Want, describe(e.Value))
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Param, e.Want, describe(e.Value))
}

// MissingError reports a required parameter with no supplied value.
type MissingError struct {
	Param string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Param)
}

// Coerce converts v to the Go representation of t: int64, float64, string,
// bool, map[string]any or []any.
func Coerce(t Type, v any) (any, error) {
	var (
		out any
		ok  bool
	)

	switch t {
	case Any:
		return v, nil
	case Integer:
		out, ok = toInt(v)
	case Number:
		out, ok = toFloat(v)
	case String:
		out, ok = v.(string)
	case Boolean:
		out, ok = toBool(v)
	case Object:
		out, ok = v.(map[string]any)
	case Array:
		out, ok = toSlice(v)
	default:
		return nil, fmt.Errorf("unknown type %q", string(t))
	}

	if !ok {
		return nil, &CoercionError{Want: t, Value: v}
	}
	return out, nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", x)
	case json.Number:
		return "number " + x.String()
	case bool:
		return fmt.Sprintf("boolean %t", x)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}
