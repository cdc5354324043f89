package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/felixgeelhaar/mcp-demo/middleware"
	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// DefaultMaxLineSize bounds a single stdio message.
const DefaultMaxLineSize = 4 * middleware.MB

// Stdio implements MCP transport over newline-delimited stdin/stdout.
type Stdio struct {
	in      io.Reader
	out     io.Writer
	logger  middleware.Logger
	maxLine int

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStdioLogger sets the logger for transport events.
func WithStdioLogger(l middleware.Logger) StdioOption {
	return func(s *Stdio) {
		s.logger = l
	}
}

// WithMaxLineSize sets the largest message accepted on stdin.
func WithMaxLineSize(n int) StdioOption {
	return func(s *Stdio) {
		s.maxLine = n
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  middleware.NopLogger{},
		maxLine: DefaultMaxLineSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// inbound is one line read from stdin. An oversized line arrives with
// tooLong set and no data.
type inbound struct {
	data    []byte
	tooLong bool
}

// Serve reads one request per line and writes one response per line. It
// returns nil when stdin reaches EOF. Each request is answered before the
// next line is handled. A line longer than the configured maximum is
// discarded and answered with an invalid request error.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	reader := bufio.NewReader(s.in)

	lines := make(chan inbound)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			data, tooLong, err := readLine(reader, s.maxLine)
			if len(data) > 0 || tooLong {
				select {
				case lines <- inbound{data: data, tooLong: tooLong}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- fmt.Errorf("read stdin: %w", err)
				}
				return
			}
		}
	}()

	s.logger.Info("serving", middleware.F("transport", s.Addr()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					s.logger.Info("stdin closed")
					return nil
				}
			}
			if line.tooLong {
				s.logger.Warn("message too large", middleware.F("limit", s.maxLine))
				resp := protocol.NewErrorResponse(nullID,
					protocol.NewInvalidRequest(fmt.Sprintf("message exceeds %d bytes", s.maxLine)))
				if err := s.writeResponse(resp); err != nil {
					return err
				}
				continue
			}
			if len(bytes.TrimSpace(line.data)) == 0 {
				continue
			}
			if resp := respond(ctx, handler, s.logger, line.data); resp != nil {
				if err := s.writeResponse(resp); err != nil {
					return err
				}
			}
		}
	}
}

// readLine reads up to the next newline. The line terminator is stripped.
// Once the content exceeds limit bytes the rest of the line is consumed and
// dropped, and tooLong is reported instead of the data.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		var chunk []byte
		chunk, err = r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			n := len(line)
			if err == nil {
				n--
			}
			if n > 0 && line[n-1] == '\r' {
				n--
			}
			if n > limit {
				tooLong, line = true, nil
			} else if err == nil {
				line = line[:n]
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

func (s *Stdio) writeResponse(resp *protocol.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", middleware.F("error", err.Error()))
		data, err = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError("unserializable result")))
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
	}

	if _, err := s.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}
