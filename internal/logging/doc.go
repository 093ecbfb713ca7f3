// Package logging provides slog helpers with consistent attribute naming.
//
// All log output goes to stderr so that stdout stays reserved for the
// MCP stdio transport.
package logging
