package transport

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// Handler processes incoming MCP requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve blocks until the input ends, ctx is canceled or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}

// nullID is the id of responses to messages whose id could not be read.
var nullID = json.RawMessage("null")

// respond decodes one message, runs it through handler and returns the
// response to send back, or nil for notifications.
func respond(ctx context.Context, handler Handler, logger middleware.Logger, data []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Debug("unparseable message", middleware.F("error", err.Error()))
		return protocol.NewErrorResponse(nullID, protocol.NewParseError(err.Error()))
	}

	if req.JSONRPC != protocol.JSONRPCVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return protocol.NewErrorResponse(req.ID, protocol.NewInvalidRequest("jsonrpc must be \"2.0\" and method must be set"))
	}

	resp, err := handler.HandleRequest(ctx, &req)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}
	if resp == nil {
		return protocol.NewErrorResponse(req.ID, protocol.NewInternalError("no response for "+req.Method))
	}
	return resp
}
