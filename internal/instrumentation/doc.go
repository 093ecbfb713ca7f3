// Package instrumentation provides OpenTelemetry instrumentation for the
// MCP server.
//
// # Metrics
//
// HTTP metrics (streamable-http transport only):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Calendar API metrics:
//   - calendar_api_operations_total: Counter of Calendar API operations by operation and status
//   - calendar_api_operation_duration_seconds: Histogram of Calendar API operation durations
//   - calendar_api_retries_total: Counter of retried Calendar API attempts by operation
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gcalendar-mcp)
//
// With the default prometheus exporter the metrics are served by the
// dedicated metrics server on its own port, isolated from MCP traffic.
package instrumentation
