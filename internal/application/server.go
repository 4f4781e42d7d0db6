package application

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer assembles an MCP server over a dispatcher: every registry tool
// is advertised with its generated descriptor and routed through
// Dispatcher.Invoke. The handler closures never return an error: the
// dispatch boundary owns failure normalization, so the transport only ever
// sees complete envelopes.
func NewServer[C any](name, version string, d *Dispatcher[C]) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, tool := range d.tools {
		toolName := tool.Name
		s.AddTool(tool.Definition(), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return d.Invoke(ctx, toolName, req.GetArguments()), nil
		})
	}

	return s
}
