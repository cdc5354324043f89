package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcp-demo/middleware"
)

// WebSocket implements MCP transport over WebSocket connections, one
// JSON-RPC message per text frame. Each connection is served sequentially.
type WebSocket struct {
	addr     string
	upgrader websocket.Upgrader
	logger   middleware.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration

	mu       sync.RWMutex
	listener net.Listener
	clients  map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithWebSocketReadTimeout sets how long a connection may stay idle.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readTimeout = d
	}
}

// WithWebSocketWriteTimeout sets the write timeout for WebSocket messages.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.writeTimeout = d
	}
}

// WithWebSocketCheckOrigin sets the origin check function for WebSocket upgrades.
func WithWebSocketCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(ws *WebSocket) {
		ws.upgrader.CheckOrigin = fn
	}
}

// WithWebSocketLogger sets the logger for connection events.
func WithWebSocketLogger(l middleware.Logger) WebSocketOption {
	return func(ws *WebSocket) {
		ws.logger = l
	}
}

// NewWebSocket creates a new WebSocket transport listening on addr.
func NewWebSocket(addr string, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:       middleware.NopLogger{},
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		clients:      make(map[*wsClient]struct{}),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Addr returns the bound address once serving, else the configured one.
func (ws *WebSocket) Addr() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	if ws.listener != nil {
		return ws.listener.Addr().String()
	}
	return ws.addr
}

// Serve listens on the configured address and serves until ctx is canceled.
func (ws *WebSocket) Serve(ctx context.Context, handler Handler) error {
	ln, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return fmt.Errorf("websocket listen: %w", err)
	}

	ws.mu.Lock()
	ws.listener = ln
	ws.mu.Unlock()

	server := &http.Server{
		Handler:           ws.HTTPHandler(ctx, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ws.logger.Info("serving", middleware.F("transport", "websocket"), middleware.F("addr", ln.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.closeAllClients()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("websocket serve: %w", err)
	}
}

// HTTPHandler returns the upgrade handler, for mounting on an existing
// server or an httptest.Server.
func (ws *WebSocket) HTTPHandler(ctx context.Context, handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.handleConnection(ctx, w, r, handler)
	})
}

func (ws *WebSocket) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, handler Handler) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", middleware.F("error", err.Error()))
		return
	}

	client := &wsClient{conn: conn}

	ws.mu.Lock()
	ws.clients[client] = struct{}{}
	ws.mu.Unlock()

	ws.logger.Debug("client connected", middleware.F("remote", r.RemoteAddr))

	defer func() {
		ws.mu.Lock()
		delete(ws.clients, client)
		ws.mu.Unlock()
		_ = conn.Close()
		ws.logger.Debug("client disconnected", middleware.F("remote", r.RemoteAddr))
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		if ws.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(ws.readTimeout))
		}

		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logger.Warn("websocket read failed", middleware.F("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := respond(ctx, handler, ws.logger, message)
		if resp == nil {
			continue
		}
		if err := client.writeJSON(resp, ws.writeTimeout); err != nil {
			ws.logger.Warn("websocket write failed", middleware.F("error", err.Error()))
			return
		}
	}
}

func (ws *WebSocket) closeAllClients() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for client := range ws.clients {
		client.close()
	}
}

func (c *wsClient) writeJSON(v any, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteJSON(v)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}
