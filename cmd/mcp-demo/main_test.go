package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-demo/demo"
	"github.com/felixgeelhaar/mcp-demo/protocol"
	"github.com/felixgeelhaar/mcp-demo/server"
)

func noEnv(string) (string, bool) { return "", false }

func runLines(t *testing.T, args []string, lines ...string) (int, []*protocol.Response, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader(strings.Join(lines, "\n") + "\n")
	code := run(context.Background(), args, noEnv, stdin, &stdout, &stderr)

	var responses []*protocol.Response
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var resp protocol.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("stdout line %q is not a response: %v", scanner.Text(), err)
		}
		responses = append(responses, &resp)
	}
	return code, responses, stderr.String()
}

func TestRun_Stdio(t *testing.T) {
	code, responses, logs := runLines(t, []string{"-log-level", "debug"},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"add","arguments":{"a":2,"b":3}}}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"divide","arguments":{"a":1,"b":0}}}`,
	)

	if code != 0 {
		t.Fatalf("exit code = %d, logs:\n%s", code, logs)
	}
	if len(responses) != 4 {
		t.Fatalf("got %d responses, want 4", len(responses))
	}

	var sum server.ToolResult
	if err := responses[1].DecodeResult(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.IsError || sum.Content[0].Text != "5" {
		t.Errorf("add result = %+v", sum)
	}

	if responses[2].Error == nil || responses[2].Error.Code != protocol.CodeParseError {
		t.Errorf("malformed line response = %+v, want parse error", responses[2])
	}

	var div server.ToolResult
	if err := responses[3].DecodeResult(&div); err != nil {
		t.Fatal(err)
	}
	if !div.IsError {
		t.Errorf("divide by zero result = %+v, want isError", div)
	}

	if !strings.Contains(logs, "msg=serving") || !strings.Contains(logs, "variant=basic") {
		t.Errorf("startup not logged:\n%s", logs)
	}
}

func TestRun_ExtendedVariant(t *testing.T) {
	code, responses, _ := runLines(t, []string{"-variant", "extended"},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"fibonacci","arguments":{"n":"7"}}}`,
	)
	if code != 0 || len(responses) != 1 {
		t.Fatalf("code = %d, responses = %d", code, len(responses))
	}

	var result server.ToolResult
	if err := responses[0].DecodeResult(&result); err != nil {
		t.Fatal(err)
	}
	if got := result.Content[0].Text; got != "[0,1,1,2,3,5,8]" {
		t.Errorf("fibonacci(7) = %s", got)
	}
}

func TestRun_Telemetry(t *testing.T) {
	code, _, logs := runLines(t, []string{"-telemetry"},
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	if code != 0 {
		t.Fatalf("exit code = %d, logs:\n%s", code, logs)
	}
	for _, want := range []string{"mcp.ping", "msg=metric", "name=mcp.server.requests"} {
		if !strings.Contains(logs, want) {
			t.Errorf("stderr missing %q:\n%s", want, logs)
		}
	}
}

func TestRun_BadConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown variant", []string{"-variant", "huge"}, 2},
		{"unknown flag", []string{"-bogus"}, 2},
		{"help", []string{"-h"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, noEnv, strings.NewReader(""), &stdout, &stderr)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.want, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want nothing", stdout.String())
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	stdin, _ := io.Pipe()
	if code := run(ctx, nil, noEnv, stdin, &stdout, &stderr); code != 0 {
		t.Errorf("exit code = %d, want 0 (stderr %q)", code, stderr.String())
	}
}

func TestRun_DuplicateRegistration(t *testing.T) {
	orig := variantEntries
	t.Cleanup(func() { variantEntries = orig })

	variantEntries = func(v demo.Variant) ([]server.Entry, error) {
		entries, err := demo.Entries(v)
		if err != nil {
			return nil, err
		}
		return append(entries, entries[0]), nil
	}

	code, responses, logs := runLines(t, nil, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if len(responses) != 0 {
		t.Errorf("got %d responses from a server that failed to start", len(responses))
	}
	if !strings.Contains(logs, "register basic handlers") || !strings.Contains(logs, "already registered") {
		t.Errorf("logs = %q, want duplicate registration error", logs)
	}
	if strings.Contains(logs, "msg=serving") {
		t.Errorf("server started serving: %q", logs)
	}
}
