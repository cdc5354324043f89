package server

import (
	"fmt"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

// DuplicateNameError is returned by Register when the name (or template) is
// already taken within the entry's kind.
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already registered", e.Kind, e.Name)
}

// NotFoundError reports a tool or prompt name, or a resource URI, that
// resolves to nothing.
type NotFoundError struct {
	Kind   Kind
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Target)
}

// MissingArgumentError reports a required parameter with no value.
type MissingArgumentError struct {
	Kind  Kind
	Name  string
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s %s: missing required argument: %s", e.Kind, e.Name, e.Param)
}

// TypeMismatchError reports an argument that cannot be coerced to its
// declared type.
type TypeMismatchError struct {
	Kind  Kind
	Name  string
	Param string
	Want  schema.Type
	Err   error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s %s: invalid argument: %v", e.Kind, e.Name, e.Err)
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}

// HandlerError wraps a failure raised while a handler ran, including
// recovered panics.
type HandlerError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("error executing %s %s: %v", e.Kind, e.Name, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Message returns the underlying failure text without the handler prefix.
func (e *HandlerError) Message() string {
	return e.Err.Error()
}
