// Package testutil provides in-process helpers for testing MCP handlers.
//
// Messages are passed through JSON on the way in and out, so results look
// exactly as they would to a remote client.
//
// Example usage:
//
//	func TestAdd(t *testing.T) {
//	    srv := server.New(server.Info{Name: "test", Version: "1.0.0"})
//	    if err := demo.Register(srv, demo.Basic); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    tc := testutil.NewTestClient(t, srv)
//	    got, err := tc.CallTool("add", map[string]any{"a": 2, "b": 3})
//	    if err != nil || got != "5" {
//	        t.Fatalf("add = %q, %v", got, err)
//	    }
//	}
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/protocol"
	"github.com/felixgeelhaar/mcp-demo/server"
	"github.com/felixgeelhaar/mcp-demo/transport"
)

// Transport delivers requests to a handler in-process and records them.
// It satisfies client.Transport and client.Notifier.
type Transport struct {
	handler transport.Handler

	mu       sync.Mutex
	requests []protocol.Request
	closed   bool
}

// NewTransport creates a transport in front of handler, typically a
// *server.Server or a middleware chain around one.
func NewTransport(handler transport.Handler) *Transport {
	return &Transport{handler: handler}
}

// Send delivers req and returns the response as decoded from JSON.
// Handler errors become JSON-RPC error responses.
func (t *Transport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	wireReq, err := t.deliver(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.handler.HandleRequest(ctx, wireReq)
	if err != nil {
		resp = protocol.NewErrorResponse(wireReq.ID, protocol.AsError(err))
	}
	if resp == nil {
		return nil, fmt.Errorf("no response to %s", req.Method)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var wireResp protocol.Response
	if err := json.Unmarshal(data, &wireResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &wireResp, nil
}

// Notify delivers a notification and discards any response.
func (t *Transport) Notify(ctx context.Context, req *protocol.Request) error {
	wireReq, err := t.deliver(req)
	if err != nil {
		return err
	}
	_, err = t.handler.HandleRequest(ctx, wireReq)
	return err
}

func (t *Transport) deliver(req *protocol.Request) (*protocol.Request, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var wireReq protocol.Request
	if err := json.Unmarshal(data, &wireReq); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errors.New("transport closed")
	}
	t.requests = append(t.requests, wireReq)
	return &wireReq, nil
}

// Requests returns every request and notification delivered so far.
func (t *Transport) Requests() []protocol.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]protocol.Request(nil), t.requests...)
}

// Methods returns the method of every delivered message, in order.
func (t *Transport) Methods() []string {
	reqs := t.Requests()
	methods := make([]string, len(reqs))
	for i, r := range reqs {
		methods[i] = r.Method
	}
	return methods
}

// Close makes further sends fail.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// ToolError is returned by CallTool when the tool reported a failure in
// its result rather than as a JSON-RPC error.
type ToolError struct {
	Tool string
	Text string
}

func (e *ToolError) Error() string {
	return e.Text
}

// TestClient is a test client for MCP servers.
type TestClient struct {
	t         testing.TB
	transport *Transport
	reqID     int64
	mu        sync.Mutex
}

// NewTestClient creates a test client for srv and performs the handshake.
func NewTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()

	tc := NewTestClientWithHandler(t, srv)
	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	return tc
}

// NewTestClientWithHandler creates a test client with a custom handler.
// This is useful for testing middleware. No handshake is performed.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	return &TestClient{
		t:         t,
		transport: NewTransport(handler),
	}
}

// Transport returns the underlying transport.
func (tc *TestClient) Transport() *Transport {
	return tc.transport
}

func (tc *TestClient) nextID() int64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return tc.reqID
}

// SendRequest sends a request and returns the response. JSON-RPC errors
// are in resp.Error, not err.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	req, err := protocol.NewRequest(tc.nextID(), method, params)
	if err != nil {
		return nil, err
	}
	return tc.transport.Send(context.Background(), req)
}

// call sends a request and decodes its result into out.
func (tc *TestClient) call(method string, params, out any) error {
	tc.t.Helper()

	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return err
	}
	return resp.DecodeResult(out)
}

// Initialize sends an initialize request followed by the initialized
// notification.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	var result map[string]any
	err := tc.call(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
		"capabilities": map[string]any{},
	}, &result)
	if err != nil {
		return nil, err
	}

	note := &protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: protocol.MethodInitialized}
	if err := tc.transport.Notify(context.Background(), note); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTools lists all available tools.
func (tc *TestClient) ListTools() ([]server.ToolInfo, error) {
	tc.t.Helper()

	var result struct {
		Tools []server.ToolInfo `json:"tools"`
	}
	if err := tc.call(protocol.MethodToolsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool calls a tool and returns its text. A result flagged isError is
// returned as a *ToolError carrying the text.
func (tc *TestClient) CallTool(name string, args any) (string, error) {
	tc.t.Helper()

	var result server.ToolResult
	if err := tc.call(protocol.MethodToolsCall, toolParams(name, args), &result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("tool %q returned no content", name)
	}

	text := result.Content[0].Text
	if result.IsError {
		return "", &ToolError{Tool: name, Text: text}
	}
	return text, nil
}

// CallToolRaw calls a tool and returns the raw response.
func (tc *TestClient) CallToolRaw(name string, args any) (*protocol.Response, error) {
	tc.t.Helper()
	return tc.SendRequest(protocol.MethodToolsCall, toolParams(name, args))
}

func toolParams(name string, args any) map[string]any {
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	return params
}

// ListResources lists all available resources.
func (tc *TestClient) ListResources() ([]server.ResourceInfo, error) {
	tc.t.Helper()

	var result struct {
		Resources []server.ResourceInfo `json:"resources"`
	}
	if err := tc.call(protocol.MethodResourcesList, nil, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// ListResourceTemplates lists the templated resources.
func (tc *TestClient) ListResourceTemplates() ([]server.ResourceTemplateInfo, error) {
	tc.t.Helper()

	var result struct {
		ResourceTemplates []server.ResourceTemplateInfo `json:"resourceTemplates"`
	}
	if err := tc.call(protocol.MethodResourceTemplatesList, nil, &result); err != nil {
		return nil, err
	}
	return result.ResourceTemplates, nil
}

// ReadResource reads a resource by URI and returns its text.
func (tc *TestClient) ReadResource(uri string) (string, error) {
	tc.t.Helper()

	var result struct {
		Contents []server.ResourceContent `json:"contents"`
	}
	if err := tc.call(protocol.MethodResourcesRead, map[string]any{"uri": uri}, &result); err != nil {
		return "", err
	}
	if len(result.Contents) == 0 {
		return "", fmt.Errorf("resource %q returned no contents", uri)
	}
	return result.Contents[0].Text, nil
}

// ListPrompts lists all available prompts.
func (tc *TestClient) ListPrompts() ([]server.PromptInfo, error) {
	tc.t.Helper()

	var result struct {
		Prompts []server.PromptInfo `json:"prompts"`
	}
	if err := tc.call(protocol.MethodPromptsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Prompts, nil
}

// GetPrompt gets a prompt by name with the given arguments.
func (tc *TestClient) GetPrompt(name string, args map[string]string) (*server.PromptResult, error) {
	tc.t.Helper()

	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}

	var result server.PromptResult
	if err := tc.call(protocol.MethodPromptsGet, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping sends a ping request.
func (tc *TestClient) Ping() error {
	tc.t.Helper()

	var result map[string]any
	return tc.call(protocol.MethodPing, nil, &result)
}

// AssertToolExists asserts that a tool with the given name exists.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}

	for _, tool := range tools {
		if tool.Name == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists asserts that a resource listed under uri exists.
// Templated resources are listed under their template.
func (tc *TestClient) AssertResourceExists(uri string) {
	tc.t.Helper()

	resources, err := tc.ListResources()
	if err != nil {
		tc.t.Fatalf("ListResources failed: %v", err)
	}

	for _, res := range resources {
		if res.URI == uri {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uri)
}

// AssertPromptExists asserts that a prompt with the given name exists.
func (tc *TestClient) AssertPromptExists(name string) {
	tc.t.Helper()

	prompts, err := tc.ListPrompts()
	if err != nil {
		tc.t.Fatalf("ListPrompts failed: %v", err)
	}

	for _, prompt := range prompts {
		if prompt.Name == name {
			return
		}
	}
	tc.t.Errorf("prompt %q not found", name)
}

// AssertErrorCode asserts that err is a JSON-RPC error with the given code.
func (tc *TestClient) AssertErrorCode(err error, code int) {
	tc.t.Helper()

	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) {
		tc.t.Errorf("error = %v, want JSON-RPC error %d", err, code)
		return
	}
	if rpcErr.Code != code {
		tc.t.Errorf("error code = %d (%s), want %d", rpcErr.Code, rpcErr.Message, code)
	}
}
