// Package mcp is the entry point for embedding the demo MCP server.
//
// It re-exports the registry, middleware and transport pieces most callers
// need and wires them together:
//
//	srv, err := mcp.NewDemoServer(mcp.ServerInfo{Name: "Demo", Version: "1.0.0"}, mcp.Extended)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mcp.ServeStdio(ctx, srv, mcp.WithMiddleware(mcp.DefaultMiddleware(logger)...))
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-demo/demo"
	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/protocol"
	"github.com/felixgeelhaar/mcp-demo/server"
	"github.com/felixgeelhaar/mcp-demo/transport"
)

// Re-export core types for convenience

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Server is the handler registry and MCP method router.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Entry is one tool, resource or prompt registration.
type Entry = server.Entry

// Variant selects a demo surface.
type Variant = demo.Variant

// Demo variants.
const (
	Basic    = demo.Basic
	Extended = demo.Extended
)

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field

type RateLimitOption = middleware.RateLimitOption
type SizeLimitOption = middleware.SizeLimitOption

// Admission control re-exports.
var (
	RateLimit         = middleware.RateLimit
	RateLimitByMethod = middleware.RateLimitByMethod
	SizeLimit         = middleware.SizeLimit
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// DefaultTimeout bounds each request in DefaultMiddleware.
const DefaultTimeout = 30 * time.Second

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
	stdio      []transport.StdioOption
	websocket  []transport.WebSocketOption
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger sets the logger used by the transport.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// WithStdioOptions passes options to the stdio transport.
func WithStdioOptions(opts ...transport.StdioOption) ServeOption {
	return func(o *serveOptions) {
		o.stdio = append(o.stdio, opts...)
	}
}

// WithWebSocketOptions passes options to the WebSocket transport.
func WithWebSocketOptions(opts ...transport.WebSocketOption) ServeOption {
	return func(o *serveOptions) {
		o.websocket = append(o.websocket, opts...)
	}
}

// NewServer creates an empty registry with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// NewDemoServer creates a registry populated with the entries of variant v.
func NewDemoServer(info ServerInfo, v Variant, opts ...Option) (*Server, error) {
	srv := server.New(info, opts...)
	if err := demo.Register(srv, v); err != nil {
		return nil, fmt.Errorf("register %s variant: %w", v, err)
	}
	return srv, nil
}

// Handler wraps srv in the configured middleware, ready for a transport.
func Handler(srv *Server, opts ...ServeOption) MiddlewareHandlerFunc {
	o := applyServeOptions(opts)
	return middleware.Wrap(srv, o.middleware...)
}

// ServeStdio runs the server using stdio transport.
// This blocks until stdin ends, the context is canceled or an error occurs.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	o := applyServeOptions(opts)

	stdioOpts := o.stdio
	if o.logger != nil {
		stdioOpts = append([]transport.StdioOption{transport.WithStdioLogger(o.logger)}, stdioOpts...)
	}

	t := transport.NewStdio(stdioOpts...)
	return t.Serve(ctx, middleware.Wrap(srv, o.middleware...))
}

// ServeWebSocket runs the server using WebSocket transport.
// This blocks until the context is canceled or an error occurs.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, opts ...ServeOption) error {
	o := applyServeOptions(opts)

	wsOpts := o.websocket
	if o.logger != nil {
		wsOpts = append([]transport.WebSocketOption{transport.WithWebSocketLogger(o.logger)}, wsOpts...)
	}

	t := transport.NewWebSocket(addr, wsOpts...)
	return t.Serve(ctx, middleware.Wrap(srv, o.middleware...))
}

func applyServeOptions(opts []ServeOption) *serveOptions {
	o := &serveOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that turns panics into internal errors.
func Recover(logger Logger) Middleware {
	return middleware.Recover(logger)
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into the context.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended stack: recovery, request IDs,
// logging, a 1 MB params limit and DefaultTimeout.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.Stack(middleware.StackConfig{
		Logger:   logger,
		MaxBytes: MB,
		Timeout:  DefaultTimeout,
	})
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}

// IsNotFound reports whether err is a JSON-RPC not-found error.
func IsNotFound(err error) bool {
	rpcErr := protocol.AsError(err)
	return rpcErr != nil && rpcErr.Code == protocol.CodeNotFound
}
