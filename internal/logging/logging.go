// Package logging binds the middleware Logger interface to log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/mcp-demo/middleware"
)

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a slog logger writing text or JSON records to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Adapter implements middleware.Logger on top of a slog.Logger.
type Adapter struct {
	logger *slog.Logger
}

var _ middleware.Logger = (*Adapter)(nil)

// NewAdapter wraps l.
func NewAdapter(l *slog.Logger) *Adapter {
	return &Adapter{logger: l}
}

// Slog returns the underlying logger.
func (a *Adapter) Slog() *slog.Logger {
	return a.logger
}

func (a *Adapter) Info(msg string, fields ...middleware.Field) {
	a.log(slog.LevelInfo, msg, fields)
}

func (a *Adapter) Error(msg string, fields ...middleware.Field) {
	a.log(slog.LevelError, msg, fields)
}

func (a *Adapter) Debug(msg string, fields ...middleware.Field) {
	a.log(slog.LevelDebug, msg, fields)
}

func (a *Adapter) Warn(msg string, fields ...middleware.Field) {
	a.log(slog.LevelWarn, msg, fields)
}

func (a *Adapter) log(level slog.Level, msg string, fields []middleware.Field) {
	ctx := context.Background()
	if !a.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	a.logger.LogAttrs(ctx, level, msg, attrs...)
}
