package demo

import (
	"context"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

// GreetUser builds a greeting instruction. Unknown styles fall back to
// friendly.
func GreetUser(name, style string) string {
	var prefix string
	switch style {
	case "formal":
		prefix = "Please write a formal, professional greeting"
	case "casual":
		prefix = "Please write a casual, relaxed greeting"
	default:
		prefix = "Please write a warm, friendly greeting"
	}
	return prefix + " for someone named " + name + "."
}

// SummarizeText builds a summarization instruction for text.
func SummarizeText(text, style string) string {
	switch style {
	case "short":
		return "Please provide a one-sentence summary of the following text:\n\n" + text
	case "detailed":
		return "Please provide a detailed summary of the following text, covering its main points:\n\n" + text
	default:
		return "Please summarize the following text in a " + style + " style:\n\n" + text
	}
}

func greetUserHandler(ctx context.Context, args schema.Args) (any, error) {
	return GreetUser(args.String("name"), args.String("style")), nil
}

func summarizeTextHandler(ctx context.Context, args schema.Args) (any, error) {
	return SummarizeText(args.String("text"), args.String("style")), nil
}
