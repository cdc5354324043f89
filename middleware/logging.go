package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs one line per request. Notifications
// and successes log at info, caller mistakes (bad params, unknown targets,
// rate limiting) at warn and everything else at error.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if !req.IsNotification() {
				fields = append(fields, F("id", string(req.ID)))
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}
			if target := requestTarget(req); target != "" {
				fields = append(fields, F("target", target))
			}

			if err == nil {
				logger.Info("request completed", fields...)
				return resp, nil
			}

			rpcErr := protocol.AsError(err)
			fields = append(fields, F("error", rpcErr.Message), F("code", rpcErr.Code))
			switch rpcErr.Code {
			case protocol.CodeInvalidParams, protocol.CodeNotFound, protocol.CodeMethodNotFound,
				protocol.CodeRateLimited, protocol.CodeInvalidRequest:
				logger.Warn("request rejected", fields...)
			default:
				logger.Error("request failed", fields...)
			}

			return resp, err
		}
	}
}

// requestTarget extracts the tool, prompt or resource a request names, if
// any. Malformed params yield "".
func requestTarget(req *protocol.Request) string {
	switch req.Method {
	case protocol.MethodToolsCall, protocol.MethodPromptsGet, protocol.MethodResourcesRead:
	default:
		return ""
	}

	var params struct {
		Name string `json:"name"`
		URI  string `json:"uri"`
	}
	if len(req.Params) == 0 || json.Unmarshal(req.Params, &params) != nil {
		return ""
	}
	if params.URI != "" {
		return params.URI
	}
	return params.Name
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
