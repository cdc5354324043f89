// Package protocol defines the MCP JSON-RPC 2.0 message types and error codes.
//
// Requests and responses are the line-level envelope used by every transport:
//
//	{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":1,"b":2}}}
//	{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"3"}]}}
//
// # Error Codes
//
// Standard JSON-RPC 2.0 codes plus the MCP-specific ones used by this server:
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not found
//	CodeInvalidParams  = -32602  // Missing or mistyped arguments
//	CodeInternalError  = -32603  // Handler failure
//	CodeNotFound       = -32001  // Unknown tool, prompt or resource
//	CodeRateLimited    = -32003  // Rejected by the rate limiter
//
// AsError turns an arbitrary error into a wire error, preserving the code of
// any *Error in its chain.
package protocol
