package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-demo/client"
	"github.com/felixgeelhaar/mcp-demo/demo"
	"github.com/felixgeelhaar/mcp-demo/protocol"
	"github.com/felixgeelhaar/mcp-demo/server"
)

// mockTransport implements client.Transport with canned responses.
type mockTransport struct {
	responses []protocol.Response
	requests  []protocol.Request
	idx       int
}

func (m *mockTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	m.requests = append(m.requests, *req)
	if m.idx >= len(m.responses) {
		return nil, context.DeadlineExceeded
	}
	resp := m.responses[m.idx]
	m.idx++
	return &resp, nil
}

func (m *mockTransport) Close() error {
	return nil
}

// serverTransport answers from an in-process server, passing every message
// through JSON as a real connection would.
type serverTransport struct {
	srv      *server.Server
	notified []string
	sent     []string
}

func newServerTransport(t *testing.T, v demo.Variant) *serverTransport {
	t.Helper()
	srv := server.New(server.Info{Name: "Demo", Version: "1.0.0"})
	if err := demo.Register(srv, v); err != nil {
		t.Fatal(err)
	}
	return &serverTransport{srv: srv}
}

func (s *serverTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	s.sent = append(s.sent, req.Method)

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var wireReq protocol.Request
	if err := json.Unmarshal(data, &wireReq); err != nil {
		return nil, err
	}

	resp, err := s.srv.HandleRequest(ctx, &wireReq)
	if err != nil {
		resp = protocol.NewErrorResponse(wireReq.ID, protocol.AsError(err))
	}

	data, err = json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var wireResp protocol.Response
	if err := json.Unmarshal(data, &wireResp); err != nil {
		return nil, err
	}
	return &wireResp, nil
}

func (s *serverTransport) Notify(ctx context.Context, req *protocol.Request) error {
	s.notified = append(s.notified, req.Method)
	return nil
}

func (s *serverTransport) Close() error { return nil }

func TestClient_Initialize(t *testing.T) {
	t.Run("performs handshake with server", func(t *testing.T) {
		transport := newServerTransport(t, demo.Basic)
		c := client.New(transport, client.WithClientInfo("test-client", "0.1.0"))

		info, err := c.Initialize(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if info.Name != "Demo" || info.Version != "1.0.0" {
			t.Errorf("server info = %+v", info)
		}
		if info.ProtocolVersion != protocol.MCPVersion {
			t.Errorf("protocol version = %q, want %q", info.ProtocolVersion, protocol.MCPVersion)
		}
		if !info.Capabilities.Tools || !info.Capabilities.Resources || !info.Capabilities.Prompts {
			t.Errorf("capabilities = %+v, want all", info.Capabilities)
		}
		if len(transport.notified) != 1 || transport.notified[0] != protocol.MethodInitialized {
			t.Errorf("notifications = %v, want [%s]", transport.notified, protocol.MethodInitialized)
		}
		if c.ServerInfo() != info {
			t.Error("ServerInfo() does not return the cached info")
		}
	})

	t.Run("returns error on failed handshake", func(t *testing.T) {
		transport := &mockTransport{
			responses: []protocol.Response{{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`1`),
				Error:   protocol.NewInvalidRequest("invalid request"),
			}},
		}

		c := client.New(transport)
		_, err := c.Initialize(context.Background())

		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeInvalidRequest {
			t.Fatalf("error = %v, want invalid request", err)
		}
	})
}

func TestClient_ListTools(t *testing.T) {
	c := client.New(newServerTransport(t, demo.Basic))

	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	want := []string{"add", "multiply", "divide", "ping"}
	if len(names) != len(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tools[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	params := tools[0].Parameters()
	if len(params) != 2 || params[0].Name != "a" || params[0].Type != "integer" || !params[0].Required {
		t.Errorf("add parameters = %+v", params)
	}

	if ann := tools[0].Annotations; ann == nil || ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
		t.Errorf("add annotations = %+v, want read-only hint", ann)
	}
}

func TestClient_CallTool(t *testing.T) {
	c := client.New(newServerTransport(t, demo.Basic))
	ctx := context.Background()

	t.Run("returns the serialized value", func(t *testing.T) {
		result, err := c.CallTool(ctx, "add", map[string]any{"a": 2, "b": 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError || result.Text() != "5" {
			t.Errorf("result = %+v, want 5", result)
		}
	})

	t.Run("handler failures are tool errors", func(t *testing.T) {
		result, err := c.CallTool(ctx, "divide", map[string]any{"a": 1, "b": 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("result = %+v, want isError", result)
		}
	})

	t.Run("unknown tool is a protocol error", func(t *testing.T) {
		_, err := c.CallTool(ctx, "unknown", nil)

		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeNotFound {
			t.Fatalf("error = %v, want not found", err)
		}
	})
}

func TestClient_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("converts strings using the input schema", func(t *testing.T) {
		transport := newServerTransport(t, demo.Basic)
		c := client.New(transport)

		result, err := c.Invoke(ctx, "multiply", map[string]string{"a": "6", "b": "7"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Text() != "42" {
			t.Errorf("multiply = %q, want 42", result.Text())
		}
		if transport.sent[0] != protocol.MethodToolsList {
			t.Errorf("first request = %q, want tools/list", transport.sent[0])
		}
	})

	t.Run("reports missing required parameters before calling", func(t *testing.T) {
		transport := newServerTransport(t, demo.Basic)
		c := client.New(transport)

		_, err := c.Invoke(ctx, "add", map[string]string{"a": "1", "b": " "})

		var missing *client.MissingParamsError
		if !errors.As(err, &missing) {
			t.Fatalf("error = %v, want MissingParamsError", err)
		}
		if len(missing.Names) != 1 || missing.Names[0] != "b" {
			t.Errorf("missing = %v, want [b]", missing.Names)
		}
		for _, m := range transport.sent {
			if m == protocol.MethodToolsCall {
				t.Error("tools/call sent despite missing parameter")
			}
		}
	})

	t.Run("extended tools", func(t *testing.T) {
		c := client.New(newServerTransport(t, demo.Extended))

		result, err := c.Invoke(ctx, "word_count", map[string]string{"text": "to be or not to be"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var counts map[string]int
		if err := json.Unmarshal([]byte(result.Text()), &counts); err != nil {
			t.Fatalf("word_count result %q: %v", result.Text(), err)
		}
		if counts["word_count"] != 6 || len(counts) != 1 {
			t.Errorf("counts = %v", counts)
		}
	})
}

func TestClient_Resources(t *testing.T) {
	c := client.New(newServerTransport(t, demo.Extended))
	ctx := context.Background()

	resources, err := c.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(resources) != 2 || resources[0].URI != "greeting://{name}" {
		t.Errorf("resources = %+v", resources)
	}

	templates, err := c.ListResourceTemplates(ctx)
	if err != nil {
		t.Fatalf("ListResourceTemplates() error = %v", err)
	}
	if len(templates) != 2 || templates[1].URITemplate != "quote://{category}" {
		t.Errorf("templates = %+v", templates)
	}

	content, err := c.ReadResource(ctx, "greeting://Ada")
	if err != nil {
		t.Fatalf("ReadResource() error = %v", err)
	}
	if content.Text != "Hello, Ada!" || content.URI != "greeting://Ada" {
		t.Errorf("content = %+v", content)
	}

	_, err = c.ReadResource(ctx, "greeting://a/b")
	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeNotFound {
		t.Errorf("ReadResource(greeting://a/b) error = %v, want not found", err)
	}
}

func TestClient_Prompts(t *testing.T) {
	c := client.New(newServerTransport(t, demo.Basic))
	ctx := context.Background()

	prompts, err := c.ListPrompts(ctx)
	if err != nil {
		t.Fatalf("ListPrompts() error = %v", err)
	}
	if len(prompts) != 1 || prompts[0].Name != "greet_user" {
		t.Fatalf("prompts = %+v", prompts)
	}

	result, err := c.GetPrompt(ctx, "greet_user", map[string]string{"name": "Ada", "style": "formal"})
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", result.Messages)
	}
	if result.Messages[0].Content.Text == "" {
		t.Error("prompt text is empty")
	}
}

func TestClient_Ping(t *testing.T) {
	c := client.New(newServerTransport(t, demo.Basic), client.WithTimeout(time.Second))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	c := client.New(&mockTransport{})
	if err := c.Ping(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ping() error = %v, want transport error", err)
	}
}
