package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

// Result is the outcome of a dispatch: either Value or Err is set.
type Result struct {
	Kind   Kind
	Target string

	// Name, MimeType and Returns describe the resolved entry.
	Name     string
	MimeType string
	Returns  schema.Type

	Value any
	Err   error
}

// OK reports whether the handler produced a value.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text renders the value in its serialized form.
func (r Result) Text() (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	return Serialize(r.Value)
}

// Serialize renders a handler value: strings as-is, everything else as
// compact JSON (integers in decimal, mappings and sequences in their JSON form).
func Serialize(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize result: %w", err)
	}
	return string(data), nil
}

// Dispatch resolves target within kind k, binds args against the declared
// parameters, runs the handler and returns its value. Every failure is
// reported in Result.Err; Dispatch never panics on behalf of a handler.
//
// For resources, target is a URI and placeholder values bind before args.
func (s *Server) Dispatch(ctx context.Context, k Kind, target string, args map[string]any) Result {
	res := Result{Kind: k, Target: target}

	r, values, err := s.resolve(k, target)
	if err != nil {
		res.Err = err
		return res
	}
	res.Name, res.MimeType, res.Returns = r.Name, r.MimeType, r.Returns

	if len(values) > 0 {
		merged := make(map[string]any, len(args)+len(values))
		for name, v := range args {
			merged[name] = v
		}
		for name, v := range values {
			merged[name] = v
		}
		args = merged
	}

	bound, err := r.Params.Bind(args)
	if err != nil {
		res.Err = bindError(r, err)
		return res
	}

	res.Value, res.Err = invoke(ctx, r, bound)
	return res
}

func bindError(r *registered, err error) error {
	var missing *schema.MissingError
	if errors.As(err, &missing) {
		return &MissingArgumentError{Kind: r.Kind, Name: r.Name, Param: missing.Param}
	}
	var coerce *schema.CoercionError
	if errors.As(err, &coerce) {
		return &TypeMismatchError{Kind: r.Kind, Name: r.Name, Param: coerce.Param, Want: coerce.Want, Err: err}
	}
	return &TypeMismatchError{Kind: r.Kind, Name: r.Name, Err: err}
}

func invoke(ctx context.Context, r *registered, args schema.Args) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = &HandlerError{Kind: r.Kind, Name: r.Name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	v, err = r.Handler(ctx, args)
	if err != nil {
		return nil, &HandlerError{Kind: r.Kind, Name: r.Name, Err: err}
	}
	if !conforms(r.Returns, v) {
		return nil, &HandlerError{
			Kind: r.Kind,
			Name: r.Name,
			Err:  fmt.Errorf("handler returned %T, declared %s", v, r.Returns),
		}
	}
	return v, nil
}

// conforms reports whether v has the JSON shape of the declared type.
func conforms(t schema.Type, v any) bool {
	if t == schema.Any {
		return true
	}

	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.String:
		return t == schema.String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t == schema.Integer || t == schema.Number
	case reflect.Float32, reflect.Float64:
		return t == schema.Number
	case reflect.Bool:
		return t == schema.Boolean
	case reflect.Map, reflect.Struct:
		return t == schema.Object
	case reflect.Slice, reflect.Array:
		return t == schema.Array
	default:
		return false
	}
}
