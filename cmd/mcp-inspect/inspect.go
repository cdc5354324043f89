package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/mcp-demo/client"
)

// action is one parsed inspector command.
type action struct {
	verb   string
	target string
	values map[string]string
}

// errToolFailed marks a tool call whose result was flagged as an error.
var errToolFailed = errors.New("tool reported an error")

func parseAction(args []string) (action, error) {
	a := action{verb: args[0]}

	switch a.verb {
	case "list":
		if len(args) > 1 {
			return a, fmt.Errorf("list takes no arguments")
		}
		return a, nil
	case "read":
		if len(args) != 2 {
			return a, fmt.Errorf("usage: read URI")
		}
		a.target = args[1]
		return a, nil
	case "call", "prompt":
		if len(args) < 2 {
			return a, fmt.Errorf("usage: %s NAME [key=value...]", a.verb)
		}
		a.target = args[1]
		values, err := parseValues(args[2:])
		if err != nil {
			return a, err
		}
		a.values = values
		return a, nil
	default:
		return a, fmt.Errorf("unknown command %q", a.verb)
	}
}

// parseValues reads key=value pairs. Values may contain '='.
func parseValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", pair)
		}
		values[key] = value
	}
	return values, nil
}

func inspect(ctx context.Context, c *client.Client, a action, out io.Writer) error {
	info, err := c.Initialize(ctx)
	if err != nil {
		return err
	}

	switch a.verb {
	case "list":
		return list(ctx, c, info, out)
	case "call":
		result, err := c.Invoke(ctx, a.target, a.values)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Text())
		if result.IsError {
			return fmt.Errorf("%s: %w", a.target, errToolFailed)
		}
		return nil
	case "read":
		content, err := c.ReadResource(ctx, a.target)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, content.Text)
		return nil
	case "prompt":
		result, err := c.GetPrompt(ctx, a.target, a.values)
		if err != nil {
			return err
		}
		for _, m := range result.Messages {
			fmt.Fprintf(out, "[%s]\n%s\n", m.Role, m.Content.Text)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", a.verb)
	}
}

func list(ctx context.Context, c *client.Client, info *client.ServerInfo, out io.Writer) error {
	fmt.Fprintf(out, "Server: %s %s (protocol %s)\n", info.Name, info.Version, info.ProtocolVersion)

	if info.Capabilities.Tools {
		tools, err := c.ListTools(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nTools:")
		for _, t := range tools {
			fmt.Fprintf(out, "  %s - %s\n", t.Name, t.Description)
			for _, p := range t.Parameters() {
				fmt.Fprintf(out, "      %s (%s%s)", p.Name, typeName(p.Type), requiredMark(p.Required))
				if p.Description != "" {
					fmt.Fprintf(out, " %s", p.Description)
				}
				fmt.Fprintln(out)
			}
		}
	}

	if info.Capabilities.Resources {
		resources, err := c.ListResources(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nResources:")
		for _, r := range resources {
			fmt.Fprintf(out, "  %s - %s\n", r.URI, r.Description)
		}
	}

	if info.Capabilities.Prompts {
		prompts, err := c.ListPrompts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nPrompts:")
		for _, p := range prompts {
			fmt.Fprintf(out, "  %s - %s\n", p.Name, p.Description)
			for _, arg := range p.Arguments {
				fmt.Fprintf(out, "      %s (%s)", arg.Name, strings.TrimPrefix(requiredMark(arg.Required), ", "))
				if arg.Description != "" {
					fmt.Fprintf(out, " %s", arg.Description)
				}
				fmt.Fprintln(out)
			}
		}
	}
	return nil
}

func typeName(t string) string {
	if t == "" {
		return "any"
	}
	return t
}

func requiredMark(required bool) string {
	if required {
		return ", required"
	}
	return ", optional"
}
