package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// Timeout returns middleware that gives each request a deadline of d. A
// handler that fails with the deadline's error is reported as an internal
// error naming the timeout.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			resp, err := next(ctx, req)
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				return nil, protocol.NewInternalError(fmt.Sprintf("%s timed out after %s", req.Method, d))
			}
			return resp, err
		}
	}
}
