package server

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-demo/protocol"
)

// TextContent is a text content block in tool and prompt results.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// ToolInfo is a tools/list item.
type ToolInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema any              `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ToolResult is the tools/call result. Handler failures are reported here
// with IsError set rather than as JSON-RPC errors.
type ToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError"`
}

// ResourceInfo is a resources/list item.
type ResourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceTemplateInfo is a resources/templates/list item.
type ResourceTemplateInfo struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is one item of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// PromptArgument describes a prompt argument in prompts/list.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptInfo is a prompts/list item.
type PromptInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is a message in a prompt result.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// PromptResult is the prompts/get result.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

type implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      implementation `json:"serverInfo"`
	Capabilities    map[string]any `json:"capabilities"`
	Instructions    string         `json:"instructions,omitempty"`
}

// HandleRequest routes one MCP request to the registry. It satisfies
// transport.Handler. Notifications return a nil response.
func (s *Server) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(req)
	case protocol.MethodInitialized, protocol.MethodNotificationsCancelled:
		return nil, nil
	case protocol.MethodPing:
		return protocol.NewResponse(req.ID, map[string]any{}), nil
	case protocol.MethodToolsList:
		return s.handleToolsList(req)
	case protocol.MethodToolsCall:
		return s.handleToolsCall(ctx, req)
	case protocol.MethodResourcesList:
		return s.handleResourcesList(req)
	case protocol.MethodResourceTemplatesList:
		return s.handleResourceTemplatesList(req)
	case protocol.MethodResourcesRead:
		return s.handleResourcesRead(ctx, req)
	case protocol.MethodPromptsList:
		return s.handlePromptsList(req)
	case protocol.MethodPromptsGet:
		return s.handlePromptsGet(ctx, req)
	default:
		return nil, protocol.NewMethodNotFound(req.Method)
	}
}

func (s *Server) handleInitialize(req *protocol.Request) (*protocol.Response, error) {
	info := s.Info()

	capabilities := make(map[string]any)
	if s.Has(KindTool) {
		capabilities["tools"] = map[string]any{}
	}
	if s.Has(KindResource) {
		capabilities["resources"] = map[string]any{}
	}
	if s.Has(KindPrompt) {
		capabilities["prompts"] = map[string]any{}
	}

	return protocol.NewResponse(req.ID, initializeResult{
		ProtocolVersion: protocol.MCPVersion,
		ServerInfo:      implementation{Name: info.Name, Version: info.Version},
		Capabilities:    capabilities,
		Instructions:    info.Instructions,
	}), nil
}

func (s *Server) handleToolsList(req *protocol.Request) (*protocol.Response, error) {
	entries := s.Entries(KindTool)

	tools := make([]ToolInfo, 0, len(entries))
	for _, e := range entries {
		tools = append(tools, ToolInfo{
			Name:        e.Name,
			Description: e.Description,
			InputSchema: s.inputSchema(e.Name),
			Annotations: e.Annotations,
		})
	}

	return protocol.NewResponse(req.ID, map[string]any{"tools": tools}), nil
}

func (s *Server) handleToolsCall(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, protocol.NewInvalidParams("missing tool name")
	}

	res := s.Dispatch(ctx, KindTool, params.Name, params.Arguments)
	if res.Err != nil {
		var handlerErr *HandlerError
		if errors.As(res.Err, &handlerErr) {
			return protocol.NewResponse(req.ID, ToolResult{
				Content: []TextContent{textContent(handlerErr.Error())},
				IsError: true,
			}), nil
		}
		return nil, rpcError(res.Err)
	}

	text, err := res.Text()
	if err != nil {
		return nil, protocol.NewInternalError(err.Error())
	}

	return protocol.NewResponse(req.ID, ToolResult{
		Content: []TextContent{textContent(text)},
	}), nil
}

func (s *Server) handleResourcesList(req *protocol.Request) (*protocol.Response, error) {
	entries := s.Entries(KindResource)

	resources := make([]ResourceInfo, 0, len(entries))
	for _, e := range entries {
		resources = append(resources, ResourceInfo{
			URI:         e.URITemplate,
			Name:        e.Name,
			Description: e.Description,
			MimeType:    e.MimeType,
		})
	}

	return protocol.NewResponse(req.ID, map[string]any{"resources": resources}), nil
}

func (s *Server) handleResourceTemplatesList(req *protocol.Request) (*protocol.Response, error) {
	s.mu.RLock()
	templates := make([]ResourceTemplateInfo, 0, len(s.resources.order))
	for _, r := range s.resources.order {
		if !r.template.IsTemplated() {
			continue
		}
		templates = append(templates, ResourceTemplateInfo{
			URITemplate: r.URITemplate,
			Name:        r.Name,
			Description: r.Description,
			MimeType:    r.MimeType,
		})
	}
	s.mu.RUnlock()

	return protocol.NewResponse(req.ID, map[string]any{"resourceTemplates": templates}), nil
}

func (s *Server) handleResourcesRead(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.URI == "" {
		return nil, protocol.NewInvalidParams("missing resource uri")
	}

	res := s.Dispatch(ctx, KindResource, params.URI, nil)
	if res.Err != nil {
		return nil, rpcError(res.Err)
	}

	text, err := res.Text()
	if err != nil {
		return nil, protocol.NewInternalError(err.Error())
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"contents": []ResourceContent{{
			URI:      params.URI,
			MimeType: res.MimeType,
			Text:     text,
		}},
	}), nil
}

func (s *Server) handlePromptsList(req *protocol.Request) (*protocol.Response, error) {
	entries := s.Entries(KindPrompt)

	prompts := make([]PromptInfo, 0, len(entries))
	for _, e := range entries {
		info := PromptInfo{
			Name:        e.Name,
			Description: e.Description,
		}
		for _, p := range e.Params {
			info.Arguments = append(info.Arguments, PromptArgument{
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required(),
			})
		}
		prompts = append(prompts, info)
	}

	return protocol.NewResponse(req.ID, map[string]any{"prompts": prompts}), nil
}

func (s *Server) handlePromptsGet(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, protocol.NewInvalidParams("missing prompt name")
	}

	res := s.Dispatch(ctx, KindPrompt, params.Name, params.Arguments)
	if res.Err != nil {
		return nil, rpcError(res.Err)
	}

	text, err := res.Text()
	if err != nil {
		return nil, protocol.NewInternalError(err.Error())
	}

	result := PromptResult{
		Messages: []PromptMessage{{Role: "user", Content: textContent(text)}},
	}
	if e, ok := s.Lookup(KindPrompt, res.Name); ok {
		result.Description = e.Description
	}

	return protocol.NewResponse(req.ID, result), nil
}

// rpcError maps the dispatch error taxonomy onto JSON-RPC errors.
func rpcError(err error) *protocol.Error {
	var (
		notFound *NotFoundError
		missing  *MissingArgumentError
		mismatch *TypeMismatchError
		handler  *HandlerError
	)

	switch {
	case errors.As(err, &notFound):
		return protocol.NewNotFound(notFound.Error())
	case errors.As(err, &missing):
		return protocol.NewInvalidParams(missing.Error()).WithData(map[string]any{
			"param": missing.Param,
		})
	case errors.As(err, &mismatch):
		return protocol.NewInvalidParams(mismatch.Error()).WithData(map[string]any{
			"param":    mismatch.Param,
			"expected": mismatch.Want.String(),
		})
	case errors.As(err, &handler):
		return protocol.NewInternalError(handler.Error())
	default:
		return protocol.AsError(err)
	}
}
