package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/protocol"
)

func TestProvider(t *testing.T) {
	var spans bytes.Buffer
	p, err := New(Config{ServiceName: "mcp-demo", ServiceVersion: "test", SpanWriter: &spans})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	handler := middleware.OTel(p.MiddlewareOptions()...)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		if req.Method == protocol.MethodToolsCall {
			return nil, protocol.NewNotFound("tool not found: x")
		}
		return protocol.NewResponse(req.ID, map[string]any{}), nil
	})

	ctx := context.Background()
	for _, method := range []string{protocol.MethodPing, protocol.MethodPing, protocol.MethodToolsCall} {
		_, _ = handler(ctx, &protocol.Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method})
	}

	counters, err := p.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters() error = %v", err)
	}

	got := make(map[string]int64)
	for _, c := range counters {
		got[c.Name+" "+c.Method] = c.Value
	}
	want := map[string]int64{
		middleware.MetricRequests + " ping":       2,
		middleware.MetricRequests + " tools/call": 1,
		middleware.MetricErrors + " tools/call":   1,
	}
	for key, v := range want {
		if got[key] != v {
			t.Errorf("%s = %d, want %d (all: %v)", key, got[key], v, got)
		}
	}

	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if !strings.Contains(spans.String(), "mcp.tools/call") {
		t.Errorf("exported spans do not include mcp.tools/call: %q", spans.String())
	}
}

func TestProvider_DiscardsWithoutWriter(t *testing.T) {
	p, err := New(Config{ServiceName: "mcp-demo"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
