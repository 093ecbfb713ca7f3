// Package calendar_tools registers the Google Calendar MCP tools.
package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tobedoit/gcalendar-mcp/internal/server"
)

// RegisterCalendarTools registers all Calendar-related tools with the
// MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}
