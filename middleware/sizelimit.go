package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// Common size limit presets.
const (
	KB = 1024
	MB = 1024 * KB
)

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger Logger
}

// WithSizeLimitLogger sets the logger for size limit events.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// SizeLimit returns middleware that rejects requests whose params exceed
// maxBytes with an InvalidRequest error carrying the size and the limit.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) Middleware {
	cfg := &sizeLimitConfig{logger: NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			size := int64(len(req.Params))
			if size <= maxBytes {
				return next(ctx, req)
			}

			cfg.logger.Warn("request size limit exceeded",
				F("method", req.Method),
				F("size", size),
				F("max", maxBytes),
			)
			return nil, protocol.NewInvalidRequest(
				fmt.Sprintf("request size %d exceeds limit of %d bytes", size, maxBytes),
			).WithData(map[string]any{"size": size, "max": maxBytes})
		}
	}
}
