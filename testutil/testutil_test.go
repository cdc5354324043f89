package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/demo"
	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/protocol"
	"github.com/felixgeelhaar/mcp-demo/server"
	"github.com/felixgeelhaar/mcp-demo/testutil"
)

func newDemoServer(t *testing.T, v demo.Variant) *server.Server {
	t.Helper()
	srv := server.New(server.Info{Name: "test-server", Version: "1.0.0"})
	if err := demo.Register(srv, v); err != nil {
		t.Fatalf("register %s: %v", v, err)
	}
	return srv
}

func TestTestClient_Tools(t *testing.T) {
	client := testutil.NewTestClient(t, newDemoServer(t, demo.Basic))

	t.Run("Initialize", func(t *testing.T) {
		result, err := client.Initialize()
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}

		serverInfo, ok := result["serverInfo"].(map[string]any)
		if !ok {
			t.Fatal("expected serverInfo in result")
		}
		if serverInfo["name"] != "test-server" {
			t.Errorf("expected name 'test-server', got %v", serverInfo["name"])
		}
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := client.ListTools()
		if err != nil {
			t.Fatalf("ListTools failed: %v", err)
		}
		if len(tools) != 4 {
			t.Errorf("expected 4 tools, got %d", len(tools))
		}
		client.AssertToolExists("divide")
	})

	t.Run("CallTool success", func(t *testing.T) {
		result, err := client.CallTool("add", map[string]any{"a": 2, "b": 3})
		if err != nil {
			t.Fatalf("CallTool failed: %v", err)
		}
		if result != "5" {
			t.Errorf("expected '5', got %q", result)
		}
	})

	t.Run("CallTool handler error", func(t *testing.T) {
		_, err := client.CallTool("divide", map[string]any{"a": 1, "b": 0})

		var toolErr *testutil.ToolError
		if !errors.As(err, &toolErr) {
			t.Fatalf("expected ToolError, got %v", err)
		}
		if toolErr.Tool != "divide" || toolErr.Text == "" {
			t.Errorf("unexpected tool error: %+v", toolErr)
		}
	})

	t.Run("CallTool missing argument", func(t *testing.T) {
		_, err := client.CallTool("add", map[string]any{"a": 2})
		client.AssertErrorCode(err, protocol.CodeInvalidParams)
	})

	t.Run("CallTool unknown tool", func(t *testing.T) {
		resp, err := client.CallToolRaw("nope", nil)
		if err != nil {
			t.Fatalf("CallToolRaw failed: %v", err)
		}
		client.AssertErrorCode(resp.Error, protocol.CodeNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		if err := client.Ping(); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})
}

func TestTestClient_Resources(t *testing.T) {
	client := testutil.NewTestClient(t, newDemoServer(t, demo.Extended))

	client.AssertResourceExists("greeting://{name}")
	client.AssertResourceExists("quote://{category}")

	templates, err := client.ListResourceTemplates()
	if err != nil {
		t.Fatalf("ListResourceTemplates failed: %v", err)
	}
	if len(templates) != 2 {
		t.Errorf("expected 2 templates, got %d", len(templates))
	}

	text, err := client.ReadResource("greeting://World")
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if text != "Hello, World!" {
		t.Errorf("expected 'Hello, World!', got %q", text)
	}

	_, err = client.ReadResource("unknown://x")
	client.AssertErrorCode(err, protocol.CodeNotFound)
}

func TestTestClient_Prompts(t *testing.T) {
	client := testutil.NewTestClient(t, newDemoServer(t, demo.Extended))

	client.AssertPromptExists("greet_user")
	client.AssertPromptExists("summarize_text")

	result, err := client.GetPrompt("summarize_text", map[string]string{"text": "Go is fun.", "style": "short"})
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	if result.Description == "" {
		t.Error("expected prompt description")
	}

	_, err = client.GetPrompt("summarize_text", nil)
	client.AssertErrorCode(err, protocol.CodeInvalidParams)
}

func TestTransport_RecordsRequests(t *testing.T) {
	srv := newDemoServer(t, demo.Basic)
	client := testutil.NewTestClient(t, srv)
	_ = client.Ping()

	got := client.Transport().Methods()
	want := []string{protocol.MethodInitialize, protocol.MethodInitialized, protocol.MethodPing}
	if len(got) != len(want) {
		t.Fatalf("methods = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("methods[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if err := client.Transport().Close(); err != nil {
		t.Fatal(err)
	}
	if err := client.Ping(); err == nil {
		t.Error("Ping after Close succeeded")
	}
}

func TestTestClientWithHandler_Middleware(t *testing.T) {
	srv := newDemoServer(t, demo.Basic)

	var seen []string
	record := func(next middleware.HandlerFunc) middleware.HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			seen = append(seen, req.Method)
			return next(ctx, req)
		}
	}

	client := testutil.NewTestClientWithHandler(t, middleware.Wrap(srv, record))
	if _, err := client.CallTool("multiply", map[string]any{"a": 6, "b": 7}); err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	if len(seen) != 1 || seen[0] != protocol.MethodToolsCall {
		t.Errorf("middleware saw %v, want [tools/call]", seen)
	}
}
