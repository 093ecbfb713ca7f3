package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tobedoit/gcalendar-mcp/internal/google"
	"github.com/tobedoit/gcalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gcalendar-mcp/internal/logging"
	"github.com/tobedoit/gcalendar-mcp/internal/retry"
)

// Client wraps the Google Calendar service. It is constructed once per
// process, is read-only after construction, and is safe for unlimited
// concurrent use.
type Client struct {
	svc     *calendar.Service
	policy  retry.Policy
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client authenticated with the given
// credentials. Construction only prepares the OAuth2 token source; the
// token refresh happens on the first API call. Extra options are applied
// after the credential-backed HTTP client, so tests can override the
// endpoint.
func NewClient(ctx context.Context, creds google.Credentials, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithHTTPClient(creds.HTTPClient(ctx))}, opts...)

	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClientWithService(svc), nil
}

// NewClientWithService wraps an existing Calendar service. Used by tests
// to point the client at a mock API server.
func NewClientWithService(svc *calendar.Service) *Client {
	return &Client{
		svc:    svc,
		policy: retry.DefaultPolicy(),
		logger: slog.Default(),
	}
}

// SetRetryPolicy replaces the retry policy. Call before the client is
// shared across goroutines.
func (c *Client) SetRetryPolicy(p retry.Policy) {
	c.policy = p
}

// SetMetrics attaches a metrics recorder for API call observability.
// Call before the client is shared across goroutines.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// CreateEvent inserts the event into the given calendar, retrying
// transient failures under the client's retry policy. Rate limiting
// (429) and server errors (5xx) are retried with backoff and jitter;
// other API errors propagate immediately. After exhausting the retry
// budget the last error is returned unchanged.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	logger := logging.WithOperation(c.logger, "events.insert").With(logging.CalendarID(calendarID))

	policy := c.policy
	policy.Notify = func(err error, next time.Duration) {
		logger.Warn("retrying calendar insert",
			logging.Err(err),
			slog.Duration("backoff", next))
		if c.metrics != nil {
			c.metrics.RecordRetry(ctx, "events.insert")
		}
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		if doc, merr := json.Marshal(event); merr == nil {
			logger.Debug("inserting calendar event", slog.String("document", string(doc)))
		}
	}

	start := time.Now()
	created, err := retry.Do(ctx, policy, IsRetryable, func() (*calendar.Event, error) {
		return c.insertEvent(ctx, calendarID, event)
	})
	duration := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
		logger.Error("calendar insert failed", logging.Err(err), slog.Duration(logging.KeyDuration, duration))
	} else {
		logger.Debug("calendar insert succeeded",
			slog.String("event_id", created.Id),
			slog.Duration(logging.KeyDuration, duration))
	}
	if c.metrics != nil {
		c.metrics.RecordCalendarOperation(ctx, "events.insert", status, duration)
	}

	return created, err
}

// insertEvent performs a single insert attempt.
func (c *Client) insertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	call := c.svc.Events.Insert(calendarID, event).Context(ctx)
	if event.ConferenceData != nil {
		call = call.ConferenceDataVersion(1)
	}
	return call.Do()
}
