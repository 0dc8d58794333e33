package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jadenj13/whippy-mcp/internals/tool"
)

const serverName = "Whippy AI"

// Server exposes the whippy_api tool over MCP.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tool.Dispatcher
	log        *slog.Logger
}

func New(dispatcher *tool.Dispatcher, version string, log *slog.Logger) (*Server, error) {
	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}

	hooks := &server.Hooks{}
	hooks.AddOnError(func(_ context.Context, id any, method mcp.MCPMethod, _ any, err error) {
		log.Error("mcp request failed", "id", id, "method", method, "err", err)
	})

	s := &Server{
		mcp: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithHooks(hooks),
		),
		dispatcher: dispatcher,
		log:        log,
	}
	s.mcp.AddTool(mcp.NewToolWithRawSchema(tool.Name, tool.Description, schema), s.handleCall)
	return s, nil
}

func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := s.dispatcher.InvokeArguments(ctx, req.GetArguments())
	return toCallToolResult(resp), nil
}

func toCallToolResult(resp tool.Response) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(resp.Content))
	for _, c := range resp.Content {
		content = append(content, mcp.NewTextContent(c.Text))
	}
	return &mcp.CallToolResult{Content: content, IsError: resp.IsError}
}

// ServeStdio blocks serving MCP over stdin/stdout until stdin closes or the
// process is signalled.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp,
		server.WithErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError)),
	)
}
