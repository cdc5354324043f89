package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// ErrTransportClosed is returned by Send after Close or once the server
// process has stopped writing.
var ErrTransportClosed = errors.New("transport closed")

// DefaultCloseTimeout is how long Close waits for the server to exit after
// its stdin is closed before killing it.
const DefaultCloseTimeout = 5 * time.Second

// StdioTransport connects to an MCP server via subprocess stdio.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	errOut       io.Writer
	keepStderr   func(line string) bool
	env          []string
	dir          string
	closeTimeout time.Duration

	mu       sync.Mutex
	respChan map[int64]chan *protocol.Response
	closed   bool

	// done is closed when the server's stdout ends.
	done   chan struct{}
	readWG sync.WaitGroup
}

// StdioTransportOption configures a StdioTransport.
type StdioTransportOption func(*StdioTransport)

// WithStderr forwards the server's stderr lines to w.
func WithStderr(w io.Writer) StdioTransportOption {
	return func(t *StdioTransport) {
		t.errOut = w
	}
}

// WithStderrFilter replaces the filter deciding which stderr lines are
// forwarded.
func WithStderrFilter(keep func(line string) bool) StdioTransportOption {
	return func(t *StdioTransport) {
		t.keepStderr = keep
	}
}

// WithEnv sets the server's environment. Nil inherits the current one.
func WithEnv(env []string) StdioTransportOption {
	return func(t *StdioTransport) {
		t.env = env
	}
}

// WithDir sets the server's working directory.
func WithDir(dir string) StdioTransportOption {
	return func(t *StdioTransport) {
		t.dir = dir
	}
}

// WithCloseTimeout sets how long Close waits before killing the server.
func WithCloseTimeout(d time.Duration) StdioTransportOption {
	return func(t *StdioTransport) {
		t.closeTimeout = d
	}
}

// IsStderrNoise reports logging-framework chatter and blank lines that are
// not worth showing.
func IsStderrNoise(line string) bool {
	return strings.TrimSpace(line) == "" || strings.Contains(line, "SLF4J")
}

// NewStdioTransport starts command with args and connects to its stdio.
func NewStdioTransport(command string, args []string, opts ...StdioTransportOption) (*StdioTransport, error) {
	t := &StdioTransport{
		errOut:       io.Discard,
		keepStderr:   func(line string) bool { return !IsStderrNoise(line) },
		closeTimeout: DefaultCloseTimeout,
		respChan:     make(map[int64]chan *protocol.Response),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	cmd := exec.Command(command, args...)
	cmd.Env = t.env
	cmd.Dir = t.dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.stderr = stderr

	t.readWG.Add(2)
	go t.readResponses()
	go t.forwardStderr()

	return t, nil
}

// Send sends a request and waits for a response.
func (t *StdioTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	id, err := strconv.ParseInt(string(req.ID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID %s: %w", req.ID, err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respCh := make(chan *protocol.Response, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	t.respChan[id] = respCh
	_, err = t.stdin.Write(append(data, '\n'))
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.respChan, id)
		t.mu.Unlock()
	}()

	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		return resp, nil
	case <-t.done:
		select {
		case resp := <-respCh:
			return resp, nil
		default:
		}
		return nil, fmt.Errorf("%s: server stopped: %w", req.Method, ErrTransportClosed)
	}
}

// Notify writes a notification without waiting for a reply.
func (t *StdioTransport) Notify(ctx context.Context, req *protocol.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if _, err := t.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Close closes the server's stdin and waits for it to exit, killing it
// after the close timeout.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	_ = t.stdin.Close()

	drained := make(chan struct{})
	go func() {
		t.readWG.Wait()
		close(drained)
	}()

	killed := false
	select {
	case <-drained:
	case <-time.After(t.closeTimeout):
		_ = t.cmd.Process.Kill() //nolint:errcheck // Process may have already exited
		killed = true
		<-drained
	}

	err := t.cmd.Wait()
	if killed {
		return nil
	}
	return err
}

func (t *StdioTransport) readResponses() {
	defer t.readWG.Done()
	defer close(t.done)

	scanner := bufio.NewScanner(t.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var resp protocol.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue // Skip malformed responses
		}

		id, err := strconv.ParseInt(string(resp.ID), 10, 64)
		if err != nil {
			continue
		}

		t.mu.Lock()
		if ch, ok := t.respChan[id]; ok {
			select {
			case ch <- &resp:
			default:
			}
		}
		t.mu.Unlock()
	}
}

func (t *StdioTransport) forwardStderr() {
	defer t.readWG.Done()

	scanner := bufio.NewScanner(t.stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if t.keepStderr != nil && !t.keepStderr(line) {
			continue
		}
		fmt.Fprintln(t.errOut, line)
	}
}
