// Package transport carries MCP JSON-RPC messages between a client and a
// Handler.
//
// # Stdio Transport
//
// The stdio transport reads one request per line from stdin and writes one
// response per line to stdout. Serving ends cleanly when stdin closes:
//
//	t := transport.NewStdio()
//	err := t.Serve(ctx, handler)
//
// # WebSocket Transport
//
// The WebSocket transport accepts connections on an address and exchanges
// one JSON-RPC message per text frame:
//
//	t := transport.NewWebSocket("127.0.0.1:8765")
//	err := t.Serve(ctx, handler)
//
// Both transports answer unparseable messages with a ParseError response
// carrying a null id, and stay silent for notifications.
package transport
