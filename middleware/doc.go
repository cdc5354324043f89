// Package middleware provides the request pipeline of the demo server.
//
// Each middleware wraps the next handler in the chain:
//
//	handler := middleware.Wrap(srv,
//	    middleware.Recover(logger),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//
// # Available Middleware
//
//   - Recover: converts panics into internal errors
//   - RequestID: attaches a UUID to the request context
//   - OTel: spans and request metrics via OpenTelemetry
//   - Logging: one structured line per request
//   - SizeLimit: rejects oversized params
//   - RateLimit: token bucket admission via fortify
//   - Timeout: request deadline
//
// Stack assembles them from a StackConfig in that order.
package middleware
