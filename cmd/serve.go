package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/tobedoit/gcalendar-mcp/internal/google"
	"github.com/tobedoit/gcalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gcalendar-mcp/internal/logging"
	"github.com/tobedoit/gcalendar-mcp/internal/server"
	"github.com/tobedoit/gcalendar-mcp/internal/tools/calendar_tools"
	"github.com/tobedoit/gcalendar-mcp/internal/tools/server_tools"
)

// EnvTimeZone names the environment variable holding the default IANA
// timezone for interpreting offset-less event times.
const EnvTimeZone = "GOOGLE_CALENDAR_TIMEZONE"

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server.
	Enabled bool

	// Addr is the address for the metrics server (e.g. ":9090").
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		timeZoneID     string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that lets AI assistants
create Google Calendar events.

Supported transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with health endpoints

Credentials are read from the environment and must all be set:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REFRESH_TOKEN

The default timezone for event times without a UTC offset comes from
--timezone or the GOOGLE_CALENDAR_TIMEZONE env var (default: UTC).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeZoneID == "" {
				timeZoneID = os.Getenv(EnvTimeZone)
			}
			if !metricsEnabled && os.Getenv("METRICS_ENABLED") == "true" {
				metricsEnabled = true
			}
			if metricsAddr == server.DefaultMetricsAddr {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}

			return runServe(transport, httpAddr, timeZoneID, debugMode, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type (stdio or streamable-http)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Address for the streamable-http transport")
	cmd.Flags().StringVar(&timeZoneID, "timezone", "", "Default IANA timezone for event times (default: $GOOGLE_CALENDAR_TIMEZONE or UTC)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Start the Prometheus metrics server (streamable-http only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server")

	return cmd
}

func runServe(transport, httpAddr, timeZoneID string, debugMode bool, metricsConfig MetricsConfig) error {
	logging.Setup(debugMode)

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Missing credentials are a startup failure, not a per-call one.
	creds, err := google.LoadCredentials()
	if err != nil {
		return err
	}

	loc := time.UTC
	if timeZoneID != "" {
		loc, err = time.LoadLocation(timeZoneID)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", timeZoneID, err)
		}
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// The metrics server shares no port with the MCP endpoint; it only
	// makes sense when the MCP transport is network-facing too.
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	serverContext := server.NewServerContext(shutdownCtx, creds, loc)
	serverContext.SetMetrics(provider.Metrics())
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gcalendar-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// registerAllTools registers all MCP tools.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := calendar_tools.RegisterCalendarTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register Calendar tools: %w", err)
	}
	if err := server_tools.RegisterServerTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register server tools: %w", err)
	}
	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string) error {
	streamableServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	healthChecker := server.NewHealthChecker(sc)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamableServer)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		slog.Info("starting MCP server", "transport", "streamable-http", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		return fmt.Errorf("server stopped with error: %w", err)
	case <-ctx.Done():
	}

	// Drain in-flight requests; readiness flips first so load balancers
	// stop routing new traffic.
	healthChecker.SetReady(false)
	slog.Info("shutting down MCP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
