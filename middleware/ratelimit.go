package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(*protocol.Request) string
	logger  Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from requests.
func WithRateLimitKeyFunc(fn func(*protocol.Request) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that admits rate requests per second per key
// with bursts of up to burst, using a token bucket. A burst below rate is
// raised to rate. Notifications are never limited.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(*protocol.Request) string { return "global" },
		logger:  NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if burst < rate {
		burst = rate
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if req.IsNotification() || strings.HasPrefix(req.Method, "notifications/") {
				return next(ctx, req)
			}

			key := cfg.keyFunc(req)
			if !limiter.Allow(ctx, key) {
				cfg.logger.Warn("rate limit exceeded",
					F("method", req.Method),
					F("key", key),
				)
				return nil, protocol.NewRateLimited("rate limit exceeded").WithData(map[string]any{
					"key": key,
				})
			}

			return next(ctx, req)
		}
	}
}

// RateLimitByMethod returns rate limiting middleware with one bucket per
// method, so a flood of tools/call cannot starve ping.
func RateLimitByMethod(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(req *protocol.Request) string {
			return req.Method
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
