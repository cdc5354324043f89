package demo

import (
	"fmt"

	"github.com/felixgeelhaar/mcp-demo/schema"
	"github.com/felixgeelhaar/mcp-demo/server"
)

// Variant selects which demo surface to serve.
type Variant string

// Available variants.
const (
	Basic    Variant = "basic"
	Extended Variant = "extended"
)

// Variants lists the known variants.
func Variants() []Variant {
	return []Variant{Basic, Extended}
}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case Basic, Extended:
		return v, nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

// Entries returns the registry table of a variant, in registration order.
func Entries(v Variant) ([]server.Entry, error) {
	switch v {
	case Basic:
		return []server.Entry{
			addTool(),
			multiplyTool(),
			divideTool(),
			pingTool(),
			greetingResource(),
			greetUserPrompt(),
		}, nil
	case Extended:
		return []server.Entry{
			addTool(),
			multiplyTool(),
			wordCountTool(),
			fibonacciTool(),
			pingTool(),
			greetingResource(),
			quoteResource(),
			greetUserPrompt(),
			summarizeTextPrompt(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown variant %q", string(v))
	}
}

// Register adds every entry of variant v to srv.
func Register(srv *server.Server, v Variant) error {
	entries, err := Entries(v)
	if err != nil {
		return err
	}
	return srv.RegisterAll(entries...)
}

func intPair() schema.Params {
	return schema.Params{
		{Name: "a", Type: schema.Integer, Description: "First operand"},
		{Name: "b", Type: schema.Integer, Description: "Second operand"},
	}
}

func addTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "add",
		Description: "Add two numbers",
		Params:      intPair(),
		Returns:     schema.Integer,
		Annotations: server.PureTool("Add"),
		Handler:     addHandler,
	}
}

func multiplyTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "multiply",
		Description: "Multiply two numbers",
		Params:      intPair(),
		Returns:     schema.Integer,
		Annotations: server.PureTool("Multiply"),
		Handler:     multiplyHandler,
	}
}

func divideTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "divide",
		Description: "Divide two numbers",
		Params:      intPair(),
		Returns:     schema.Integer,
		Annotations: server.PureTool("Divide"),
		Handler:     divideHandler,
	}
}

func wordCountTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "word_count",
		Description: "Count the words in a text",
		Params: schema.Params{
			{Name: "text", Type: schema.String, Description: "Text to count"},
		},
		Returns:     schema.Object,
		Annotations: server.PureTool("Word count"),
		Handler:     wordCountHandler,
	}
}

func fibonacciTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "fibonacci",
		Description: "Return the first n Fibonacci numbers",
		Params: schema.Params{
			{Name: "n", Type: schema.Integer, Description: "Number of terms"},
		},
		Returns:     schema.Array,
		Annotations: server.PureTool("Fibonacci"),
		Handler:     fibonacciHandler,
	}
}

func pingTool() server.Entry {
	return server.Entry{
		Kind:        server.KindTool,
		Name:        "ping",
		Description: "Simple health check",
		Returns:     schema.String,
		Annotations: server.PureTool("Ping"),
		Handler:     pingHandler,
	}
}

func greetingResource() server.Entry {
	return server.Entry{
		Kind:        server.KindResource,
		Name:        "greeting",
		URITemplate: "greeting://{name}",
		Description: "Get a personalized greeting",
		Params: schema.Params{
			{Name: "name", Type: schema.String, Description: "Name to greet"},
		},
		Returns: schema.String,
		Handler: greetingHandler,
	}
}

func quoteResource() server.Entry {
	return server.Entry{
		Kind:        server.KindResource,
		Name:        "quote",
		URITemplate: "quote://{category}",
		Description: "Get a quote by category (inspiration, humor, wisdom)",
		Params: schema.Params{
			{Name: "category", Type: schema.String, Description: "Quote category"},
		},
		Returns: schema.String,
		Handler: quoteHandler,
	}
}

func greetUserPrompt() server.Entry {
	return server.Entry{
		Kind:        server.KindPrompt,
		Name:        "greet_user",
		Description: "Generate a greeting prompt",
		Params: schema.Params{
			{Name: "name", Type: schema.String, Description: "Name of the person to greet"},
			{Name: "style", Type: schema.String, Description: "friendly, formal or casual", Default: "friendly"},
		},
		Returns: schema.String,
		Handler: greetUserHandler,
	}
}

func summarizeTextPrompt() server.Entry {
	return server.Entry{
		Kind:        server.KindPrompt,
		Name:        "summarize_text",
		Description: "Generate a summarization prompt",
		Params: schema.Params{
			{Name: "text", Type: schema.String, Description: "Text to summarize"},
			{Name: "style", Type: schema.String, Description: "short, detailed or a custom style", Default: "short"},
		},
		Returns: schema.String,
		Handler: summarizeTextHandler,
	}
}
