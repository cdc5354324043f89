package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

func TestRecover(t *testing.T) {
	t.Run("passes through normal responses", func(t *testing.T) {
		resp, err := Recover(NopLogger{})(okHandler)(context.Background(), toolCall("add"))
		if err != nil || resp == nil {
			t.Errorf("got (%v, %v)", resp, err)
		}
	})

	t.Run("passes through errors", func(t *testing.T) {
		want := errors.New("handler error")
		_, err := Recover(NopLogger{})(failing(want))(context.Background(), toolCall("add"))
		if err != want {
			t.Errorf("error = %v, want %v", err, want)
		}
	})

	panics := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "something broke", "panic: something broke"},
		{"error", errors.New("bad state"), "panic: bad state"},
		{"arbitrary value", 42, "panic: 42"},
	}
	for _, tt := range panics {
		t.Run("catches panic with "+tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			handler := Recover(logger)(func(context.Context, *protocol.Request) (*protocol.Response, error) {
				panic(tt.value)
			})

			resp, err := handler(context.Background(), toolCall("add"))
			if resp != nil {
				t.Errorf("resp = %v, want nil", resp)
			}
			perr := protocol.AsError(err)
			if perr == nil || perr.Code != protocol.CodeInternalError || perr.Message != tt.want {
				t.Errorf("error = %v, want internal error %q", err, tt.want)
			}

			if len(logger.entries) != 1 || logger.entries[0].level != "error" {
				t.Fatalf("entries = %+v", logger.entries)
			}
			stack, _ := logger.entries[0].field("stack")
			if s, _ := stack.(string); !strings.Contains(s, "goroutine") {
				t.Error("expected a stack trace in the log")
			}
		})
	}
}

func TestRecoverWithHandler(t *testing.T) {
	var got any
	handler := RecoverWithHandler(func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error) {
		got = panicVal
		return protocol.NewResponse(req.ID, "recovered"), nil
	})(func(context.Context, *protocol.Request) (*protocol.Response, error) {
		panic("custom")
	})

	resp, err := handler(context.Background(), toolCall("add"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result != "recovered" || got != "custom" {
		t.Errorf("resp = %v, panic value = %v", resp.Result, got)
	}
}
