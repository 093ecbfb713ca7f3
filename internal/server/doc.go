// Package server provides the MCP server context and the auxiliary HTTP
// servers for the gcalendar-mcp application.
//
// ServerContext holds the shared state the MCP tool handlers need: the
// Google credentials, the default timezone for interpreting event times,
// and a lazily constructed, cached Calendar client. The client is built
// on first use and reused by every subsequent tool invocation.
//
// HealthChecker serves /healthz and /readyz endpoints for liveness and
// readiness probes when the server runs with the streamable-http
// transport.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from MCP traffic.
package server
