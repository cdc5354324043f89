// Command mcp-demo serves the demo tools, resources and prompts over MCP.
//
// Protocol traffic uses stdout (or a WebSocket listener); logs and exported
// spans go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/mcp-demo/demo"
	"github.com/felixgeelhaar/mcp-demo/internal/config"
	"github.com/felixgeelhaar/mcp-demo/internal/logging"
	"github.com/felixgeelhaar/mcp-demo/internal/telemetry"
	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/server"
	"github.com/felixgeelhaar/mcp-demo/transport"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.LookupEnv, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code.
func run(ctx context.Context, args []string, lookup config.LookupFunc, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, lookup)
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(stderr)
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "mcp-demo:", err)
		return 2
	}

	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, "mcp-demo:", err)
		return 2
	}

	if err := serve(ctx, cfg, logger, stdin, stdout, stderr); err != nil {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

// variantEntries is the registry table source; tests replace it.
var variantEntries = demo.Entries

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	variant, err := demo.ParseVariant(cfg.Variant)
	if err != nil {
		return err
	}

	entries, err := variantEntries(variant)
	if err != nil {
		return err
	}
	srv := server.New(server.Info{Name: cfg.Name, Version: cfg.Version})
	if err := srv.RegisterAll(entries...); err != nil {
		return fmt.Errorf("register %s handlers: %w", variant, err)
	}

	adapter := logging.NewAdapter(logger)
	stack := middleware.StackConfig{
		Logger:   adapter,
		MaxBytes: cfg.MaxBytes,
		Rate:     cfg.Rate,
		Burst:    cfg.Burst,
		Timeout:  cfg.Timeout,
	}

	if cfg.Telemetry {
		provider, err := telemetry.New(telemetry.Config{
			ServiceName:    cfg.Name,
			ServiceVersion: cfg.Version,
			SpanWriter:     stderr,
		})
		if err != nil {
			return err
		}
		stack.Telemetry = true
		stack.OTelOptions = provider.MiddlewareOptions()

		defer func() {
			err = errors.Join(err, flushTelemetry(provider, logger))
		}()
	}

	handler := middleware.Wrap(srv, middleware.Stack(stack)...)

	var t transport.Transport
	switch cfg.Transport {
	case "websocket":
		t = transport.NewWebSocket(cfg.Addr, transport.WithWebSocketLogger(adapter))
	default:
		t = transport.NewStdio(
			transport.WithStdin(stdin),
			transport.WithStdout(stdout),
			transport.WithStdioLogger(adapter),
		)
	}

	logger.Info("serving",
		"name", cfg.Name,
		"variant", string(variant),
		"transport", t.Addr(),
		"tools", len(srv.Entries(server.KindTool)),
		"resources", len(srv.Entries(server.KindResource)),
		"prompts", len(srv.Entries(server.KindPrompt)),
	)

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		defer cancel()
		return t.Serve(gctx, handler)
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutting down", "cause", context.Cause(ctx))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// flushTelemetry logs the request counters and shuts the providers down.
func flushTelemetry(provider *telemetry.Provider, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	counters, err := provider.Counters(ctx)
	if err != nil {
		logger.Warn("collect metrics", "error", err)
	}
	for _, c := range counters {
		logger.Info("metric", "name", c.Name, "method", c.Method, "value", c.Value)
	}
	return provider.Shutdown(ctx)
}
