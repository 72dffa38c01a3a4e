package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oklog/ulid/v2"

	"searchagent/internal/domain"
)

// MCPServer exposes the tools of a domain.ToolExecutor over the Model Context Protocol.
type MCPServer struct {
	srv    *server.MCPServer
	logger *slog.Logger
}

// NewMCPServer registers every tool known to tools with a new MCP server.
func NewMCPServer(name, version string, tools domain.ToolExecutor, logger *slog.Logger) (*MCPServer, error) {
	s := &MCPServer{
		srv:    server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		logger: logger,
	}
	for _, schema := range tools.Schemas() {
		t, err := tools.Get(schema.Name)
		if err != nil {
			return nil, err
		}
		s.srv.AddTool(
			mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters),
			s.handler(t),
		)
	}
	return s, nil
}

// ServeStdio blocks serving requests on stdin/stdout until the stream closes.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.srv)
}

// handler adapts a domain.Tool to an MCP tool handler. Tool failures are
// reported as error results so the client model can read them.
func (s *MCPServer) handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		call := domain.ToolCall{ID: ulid.Make().String(), Name: t.Name(), Arguments: args}

		s.logger.Debug("mcp tool call", "call_id", call.ID, "tool", call.Name)
		result, err := t.Execute(ctx, call.Arguments)
		if err != nil {
			s.logger.Warn("mcp tool call failed", "call_id", call.ID, "tool", call.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}
