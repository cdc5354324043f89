// Package client provides an MCP client for driving a server over a
// transport, typically a spawned subprocess. It backs the mcp-inspect
// command and the end-to-end tests.
package client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// Transport defines the interface for client-side transport.
type Transport interface {
	// Send sends a request and waits for a response.
	Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	// Close closes the transport connection.
	Close() error
}

// Notifier is implemented by transports that can send notifications.
type Notifier interface {
	Notify(ctx context.Context, req *protocol.Request) error
}

// Client is an MCP client that communicates with an MCP server.
type Client struct {
	transport Transport
	opts      clientOptions

	mu         sync.RWMutex
	serverInfo *ServerInfo
	tools      map[string]Tool
	requestID  atomic.Int64
}

// ServerInfo contains information about the connected server.
type ServerInfo struct {
	Name            string
	Version         string
	ProtocolVersion string
	Instructions    string
	Capabilities    Capabilities
}

// Capabilities describes what features the server supports.
type Capabilities struct {
	Tools     bool
	Resources bool
	Prompts   bool
}

// Tool represents a tool exposed by the server.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
	Annotations *ToolAnnotations   `json:"annotations,omitempty"`
}

// ToolAnnotations are the behavior hints a server attaches to a tool.
type ToolAnnotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    *bool  `json:"readOnlyHint,omitempty"`
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  *bool  `json:"idempotentHint,omitempty"`
	OpenWorldHint   *bool  `json:"openWorldHint,omitempty"`
}

// Parameter is one input of a tool as shown to a user.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Parameters lists the tool's inputs: required ones in declared order,
// then optional ones by name.
func (t Tool) Parameters() []Parameter {
	s := t.InputSchema
	if s == nil {
		return nil
	}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	names := make([]string, 0, len(s.Properties))
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; ok {
			names = append(names, name)
		}
	}
	optional := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !required[name] {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	names = append(names, optional...)

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		prop := s.Properties[name]
		if prop == nil {
			continue
		}
		params = append(params, Parameter{
			Name:        name,
			Type:        propertyType(prop),
			Description: prop.Description,
			Required:    required[name],
		})
	}
	return params
}

// ToolResult is the result of calling a tool.
type ToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Text joins the text content items with newlines.
func (r *ToolResult) Text() string {
	texts := make([]string, 0, len(r.Content))
	for _, item := range r.Content {
		if item.Type == "text" {
			texts = append(texts, item.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ContentItem represents a content item in a tool result.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Resource represents a concrete resource exposed by the server. Templated
// resources are listed with their template as URI.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceTemplate represents a parameterized resource.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is the content of a resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
}

// Prompt represents a prompt exposed by the server.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument describes an argument for a prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptResult is the result of getting a prompt.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptMessage is a message in a prompt result.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content ContentItem `json:"content"`
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout     time.Duration
	clientName  string
	clientVer   string
	protocolVer string
}

// WithTimeout sets the default timeout for requests.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithClientInfo sets the client name and version for initialization.
func WithClientInfo(name, version string) Option {
	return func(o *clientOptions) {
		o.clientName = name
		o.clientVer = version
	}
}

// WithProtocolVersion sets the protocol version to use.
func WithProtocolVersion(version string) Option {
	return func(o *clientOptions) {
		o.protocolVer = version
	}
}

// New creates a new MCP client with the given transport.
func New(transport Transport, opts ...Option) *Client {
	options := clientOptions{
		timeout:     30 * time.Second,
		clientName:  "mcp-inspect",
		clientVer:   "1.0.0",
		protocolVer: protocol.MCPVersion,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		transport: transport,
		opts:      options,
	}
}

type initializeResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	Capabilities map[string]any `json:"capabilities"`
	Instructions string         `json:"instructions"`
}

// Initialize performs the MCP handshake with the server and, when the
// transport supports it, sends the initialized notification.
func (c *Client) Initialize(ctx context.Context) (*ServerInfo, error) {
	params := map[string]any{
		"protocolVersion": c.opts.protocolVer,
		"clientInfo": map[string]any{
			"name":    c.opts.clientName,
			"version": c.opts.clientVer,
		},
		"capabilities": map[string]any{},
	}

	var result initializeResult
	if err := c.call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	info := &ServerInfo{
		Name:            result.ServerInfo.Name,
		Version:         result.ServerInfo.Version,
		ProtocolVersion: result.ProtocolVersion,
		Instructions:    result.Instructions,
	}
	_, info.Capabilities.Tools = result.Capabilities["tools"]
	_, info.Capabilities.Resources = result.Capabilities["resources"]
	_, info.Capabilities.Prompts = result.Capabilities["prompts"]

	if n, ok := c.transport.(Notifier); ok {
		req := &protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: protocol.MethodInitialized}
		if err := n.Notify(ctx, req); err != nil {
			return nil, fmt.Errorf("initialized notification: %w", err)
		}
	}

	c.mu.Lock()
	c.serverInfo = info
	c.mu.Unlock()

	return info, nil
}

// ListTools returns the list of tools available on the server and caches
// their schemas for Invoke.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := c.call(ctx, protocol.MethodToolsList, nil, &result); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	cache := make(map[string]Tool, len(result.Tools))
	for _, t := range result.Tools {
		cache[t.Name] = t
	}
	c.mu.Lock()
	c.tools = cache
	c.mu.Unlock()

	return result.Tools, nil
}

// CallTool calls a tool on the server with the given arguments.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolResult, error) {
	params := map[string]any{
		"name": name,
	}
	if arguments != nil {
		params["arguments"] = arguments
	}

	var result ToolResult
	if err := c.call(ctx, protocol.MethodToolsCall, params, &result); err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}
	return &result, nil
}

// Invoke calls a tool with string values, converting them with the tool's
// input schema. Missing required values are reported without contacting
// the server. Tools the client has not listed are called with inferred
// types.
func (c *Client) Invoke(ctx context.Context, name string, values map[string]string) (*ToolResult, error) {
	tool, err := c.lookupTool(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := CheckRequired(values, tool.InputSchema); err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}
	return c.CallTool(ctx, name, ParseArguments(values, tool.InputSchema))
}

func (c *Client) lookupTool(ctx context.Context, name string) (Tool, error) {
	c.mu.RLock()
	cached := c.tools
	c.mu.RUnlock()

	if cached == nil {
		if _, err := c.ListTools(ctx); err != nil {
			return Tool{}, err
		}
		c.mu.RLock()
		cached = c.tools
		c.mu.RUnlock()
	}

	if t, ok := cached[name]; ok {
		return t, nil
	}
	return Tool{Name: name}, nil
}

// ListResources returns the list of resources available on the server.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := c.call(ctx, protocol.MethodResourcesList, nil, &result); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return result.Resources, nil
}

// ListResourceTemplates returns the parameterized resources.
func (c *Client) ListResourceTemplates(ctx context.Context) ([]ResourceTemplate, error) {
	var result struct {
		ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	}
	if err := c.call(ctx, protocol.MethodResourceTemplatesList, nil, &result); err != nil {
		return nil, fmt.Errorf("list resource templates: %w", err)
	}
	return result.ResourceTemplates, nil
}

// ReadResource reads a resource from the server.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ResourceContent, error) {
	params := map[string]any{
		"uri": uri,
	}

	var result struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := c.call(ctx, protocol.MethodResourcesRead, params, &result); err != nil {
		return nil, fmt.Errorf("read resource %q: %w", uri, err)
	}
	if len(result.Contents) == 0 {
		return nil, fmt.Errorf("read resource %q: no content", uri)
	}
	return &result.Contents[0], nil
}

// ListPrompts returns the list of prompts available on the server.
func (c *Client) ListPrompts(ctx context.Context) ([]Prompt, error) {
	var result struct {
		Prompts []Prompt `json:"prompts"`
	}
	if err := c.call(ctx, protocol.MethodPromptsList, nil, &result); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result.Prompts, nil
}

// GetPrompt gets a prompt with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*PromptResult, error) {
	params := map[string]any{
		"name": name,
	}
	if arguments != nil {
		params["arguments"] = arguments
	}

	var result PromptResult
	if err := c.call(ctx, protocol.MethodPromptsGet, params, &result); err != nil {
		return nil, fmt.Errorf("get prompt %q: %w", name, err)
	}
	return &result, nil
}

// Ping sends a ping to the server.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.call(ctx, protocol.MethodPing, nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ServerInfo returns the cached server info from initialization.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// call makes a JSON-RPC call and decodes the result into out, if non-nil.
// JSON-RPC errors are returned as *protocol.Error.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	req, err := protocol.NewRequest(c.requestID.Add(1), method, params)
	if err != nil {
		return err
	}

	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}
	return resp.DecodeResult(out)
}
