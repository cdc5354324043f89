package server

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

// Kind is the category a handler is registered under. Each kind has its own
// keyspace, so a tool and a resource may share a display name.
type Kind int

// Handler categories.
const (
	KindTool Kind = iota + 1
	KindResource
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindResource:
		return "resource"
	case KindPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "tool", "resource" or "prompt".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "tool":
		return KindTool, nil
	case "resource":
		return KindResource, nil
	case "prompt":
		return KindPrompt, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

// HandlerFunc is the body of a tool, resource or prompt. Arguments arrive
// bound and coerced to the entry's declared parameters.
type HandlerFunc func(ctx context.Context, args schema.Args) (any, error)

// Entry describes one registration.
type Entry struct {
	Kind Kind

	// Name keys tools and prompts. For resources it is a display name and
	// defaults to the template.
	Name string

	// URITemplate keys resources, e.g. "greeting://{name}". Each placeholder
	// must be a declared parameter.
	URITemplate string

	Description string

	// MimeType of resource content. Defaults to text/plain.
	MimeType string

	Params  schema.Params
	Returns schema.Type

	// Annotations are advertised for tools only.
	Annotations *ToolAnnotations

	Handler HandlerFunc
}

// key returns the registry key for the entry's kind.
func (e Entry) key() string {
	if e.Kind == KindResource {
		return e.URITemplate
	}
	return e.Name
}

// registered is an entry plus what is derived from it at registration time.
type registered struct {
	Entry
	template    *Template
	inputSchema any
}
