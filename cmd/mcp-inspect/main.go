// Command mcp-inspect launches an MCP server over stdio and shows what it
// offers.
//
// Usage:
//
//	mcp-inspect [flags] list              -- server [args...]
//	mcp-inspect [flags] call TOOL k=v...  -- server [args...]
//	mcp-inspect [flags] read URI          -- server [args...]
//	mcp-inspect [flags] prompt NAME k=v... -- server [args...]
//
// Without a server command, mcp-demo from PATH is started.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/felixgeelhaar/mcp-demo/client"
)

const defaultServer = "mcp-demo"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	timeout time.Duration
	quiet   bool
	action  []string
	server  []string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	own, serverCmd := args, []string(nil)
	if i := slices.Index(args, "--"); i >= 0 {
		own, serverCmd = args[:i], args[i+1:]
	}

	fs := flag.NewFlagSet("mcp-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not forward the server's stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mcp-inspect [flags] list|call|read|prompt [args...] -- server [args...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(own); err != nil {
		return opts, err
	}

	opts.action = fs.Args()
	if len(opts.action) == 0 {
		opts.action = []string{"list"}
	}
	opts.server = serverCmd
	if len(opts.server) == 0 {
		opts.server = []string{defaultServer}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	action, err := parseAction(opts.action)
	if err != nil {
		fmt.Fprintln(stderr, "mcp-inspect:", err)
		return 2
	}

	errOut := stderr
	if opts.quiet {
		errOut = io.Discard
	}
	tr, err := client.NewStdioTransport(opts.server[0], opts.server[1:], client.WithStderr(errOut))
	if err != nil {
		fmt.Fprintln(stderr, "mcp-inspect:", err)
		return 1
	}

	c := client.New(tr, client.WithTimeout(opts.timeout))
	err = inspect(ctx, c, action, stdout)
	if closeErr := c.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("server exited: %w", closeErr)
	}

	if err != nil {
		fmt.Fprintln(stderr, "mcp-inspect:", err)
		return 1
	}
	return 0
}
