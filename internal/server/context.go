package server

import (
	"context"
	"sync"
	"time"

	"github.com/tobedoit/gcalendar-mcp/internal/calendar"
	"github.com/tobedoit/gcalendar-mcp/internal/google"
	"github.com/tobedoit/gcalendar-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	creds    google.Credentials
	timeZone *time.Location
	metrics  *instrumentation.Metrics

	// newClient builds the Calendar client on first use; replaced in
	// tests to count constructions.
	newClient func(ctx context.Context, creds google.Credentials) (*calendar.Client, error)

	mu             sync.RWMutex
	calendarClient *calendar.Client
	shutdown       bool
}

// NewServerContext creates a new server context. The Calendar client is
// not built here: construction is deferred to the first tool invocation
// so the server can start even while Google is unreachable.
func NewServerContext(ctx context.Context, creds google.Credentials, timeZone *time.Location) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if timeZone == nil {
		timeZone = time.UTC
	}

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		creds:    creds,
		timeZone: timeZone,
		newClient: func(ctx context.Context, creds google.Credentials) (*calendar.Client, error) {
			return calendar.NewClient(ctx, creds)
		},
	}
}

// Context returns the server context. It is canceled on shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TimeZone returns the timezone used to interpret event times that carry
// no UTC offset.
func (sc *ServerContext) TimeZone() *time.Location {
	return sc.timeZone
}

// Metrics returns the metrics recorder, or nil when none is attached.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// SetMetrics attaches a metrics recorder. Call during startup, before
// the first tool invocation.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.metrics = m
}

// CalendarClient returns the cached Calendar client, building it on
// first use. Concurrent callers during the first invocation observe
// exactly one construction; once built, the same client is returned for
// the lifetime of the process.
func (sc *ServerContext) CalendarClient() (*calendar.Client, error) {
	sc.mu.RLock()
	client := sc.calendarClient
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Re-check: another goroutine may have built the client while we
	// waited for the write lock.
	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}

	// The client outlives any single request, so it is tied to the
	// server's lifetime context rather than the caller's.
	client, err := sc.newClient(sc.ctx, sc.creds)
	if err != nil {
		return nil, err
	}
	if sc.metrics != nil {
		client.SetMetrics(sc.metrics)
	}

	sc.calendarClient = client
	return client, nil
}

// SetCalendarClient replaces the cached Calendar client. Used by tests
// to inject a client pointed at a mock API server.
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClient = client
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
