package mcp

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/sidecar-go/internal/host"
)

// ToolServer holds MCP tools and serves them through the official SDK.
type ToolServer struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*registeredTool
}

// registeredTool holds tool metadata and handler for the internal registry.
type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewToolServer creates an empty tool server.
func NewToolServer(name, version string) *ToolServer {
	return &ToolServer{
		name:    name,
		version: version,
		tools:   make(map[string]*registeredTool, 4),
	}
}

// Name returns the server name.
func (s *ToolServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *ToolServer) Version() string {
	return s.version
}

// AddTool registers a tool, replacing any tool with the same name.
func (s *ToolServer) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = &registeredTool{
		tool:    tool,
		handler: handler,
	}
}

// AddCommands registers one tool per command in reg. The tools take no input.
func (s *ToolServer) AddCommands(reg *host.Registry) {
	for _, cmd := range reg.Commands() {
		s.AddTool(NewTool(cmd.Name, cmd.Description, EmptySchema()), CommandHandler(reg, cmd.Name))
	}
}

// ListTools returns the registered tools sorted by name.
func (s *ToolServer) ListTools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]*mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.tool)
	}

	slices.SortFunc(tools, func(a, b *mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}

// CallTool runs a tool in-process. Unknown tools and handler failures are
// reported as error results, not Go errors.
func (s *ToolServer) CallTool(ctx context.Context, name string) *mcp.CallToolResult {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		return ErrorResult("Tool execution failed: " + err.Error())
	}

	if result == nil {
		return &mcp.CallToolResult{Content: []mcp.Content{}}
	}

	return result
}

// Server builds an SDK server carrying every registered tool.
func (s *ToolServer) Server() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		srv.AddTool(t.tool, t.handler)
	}

	return srv
}

// Serve runs an SDK server on transport until the client disconnects or ctx
// is cancelled.
func (s *ToolServer) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.Server().Run(ctx, transport)
}

// CommandHandler adapts a registry command to an MCP tool handler. Command
// errors become error results.
func CommandHandler(reg *host.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := reg.Invoke(ctx, name)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		return TextResult(value), nil
	}
}

// EmptySchema is the input schema of a tool without arguments.
func EmptySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// ResultText joins the text content of a result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	var parts []string

	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}

	return strings.Join(parts, "\n")
}
