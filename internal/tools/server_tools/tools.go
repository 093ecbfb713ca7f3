// Package server_tools registers server-level MCP tools.
package server_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tobedoit/gcalendar-mcp/internal/server"
	"github.com/tobedoit/gcalendar-mcp/internal/tools/common"
)

// RegisterServerTools registers server-level tools with the MCP server.
func RegisterServerTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Liveness probe. Returns 'ok' when the server is responsive."),
	)

	s.AddTool(pingTool, common.InstrumentedToolHandler("ping", sc, handlePing))

	return nil
}

func handlePing(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}
