package demo

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

// QuoteFallback is returned for an unknown quote category.
const QuoteFallback = "No quote found for this category."

// Greeting returns the greeting for name.
func Greeting(name string) string {
	return "Hello, " + name + "!"
}

// Quote looks up a quote by category, ignoring case.
func Quote(category string) string {
	switch strings.ToLower(category) {
	case "inspiration":
		return "The best way to get started is to quit talking and begin doing."
	case "humor":
		return "I told my computer I needed a break, and it said it would go to sleep."
	case "wisdom":
		return "The only true wisdom is in knowing you know nothing."
	default:
		return QuoteFallback
	}
}

func greetingHandler(ctx context.Context, args schema.Args) (any, error) {
	return Greeting(args.String("name")), nil
}

func quoteHandler(ctx context.Context, args schema.Args) (any, error) {
	return Quote(args.String("category")), nil
}
