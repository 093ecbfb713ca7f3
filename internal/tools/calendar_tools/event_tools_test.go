package calendar_tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tobedoit/gcalendar-mcp/internal/calendar"
	"github.com/tobedoit/gcalendar-mcp/internal/calendar/caltest"
	"github.com/tobedoit/gcalendar-mcp/internal/google"
	"github.com/tobedoit/gcalendar-mcp/internal/retry"
	"github.com/tobedoit/gcalendar-mcp/internal/server"
)

func newTestContext(t *testing.T) (*server.ServerContext, *caltest.Server) {
	t.Helper()

	srv := caltest.NewServer()
	t.Cleanup(srv.Close)

	svc, err := gcal.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication())
	require.NoError(t, err)

	client := calendar.NewClientWithService(svc)
	policy := retry.DefaultPolicy()
	policy.BaseDelay = 2 * time.Millisecond
	client.SetRetryPolicy(policy)

	creds := google.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	}
	sc := server.NewServerContext(context.Background(), creds, time.UTC)
	t.Cleanup(func() { _ = sc.Shutdown() })
	sc.SetCalendarClient(client)

	return sc, srv
}

func createEventRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "create_event",
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestHandleCreateEvent(t *testing.T) {
	sc, srv := newTestContext(t)

	request := createEventRequest(map[string]any{
		"summary":    "Team standup",
		"start_time": "2024-03-01T09:00:00+01:00",
		"end_time":   "2024-03-01T09:30:00+01:00",
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Event created: https://www.google.com/calendar/event")

	inserted := srv.Inserted()
	require.Len(t, inserted, 1)
	event := inserted[0]
	assert.Equal(t, "Team standup", event.Summary)
	assert.Equal(t, "2024-03-01T09:00:00+01:00", event.Start.DateTime)
	assert.Equal(t, "2024-03-01T09:30:00+01:00", event.End.DateTime)

	// Default reminder policy: no calendar defaults, one popup at 10
	// minutes.
	require.NotNil(t, event.Reminders)
	assert.False(t, event.Reminders.UseDefault)
	require.Len(t, event.Reminders.Overrides, 1)
	assert.Equal(t, "popup", event.Reminders.Overrides[0].Method)
	assert.Equal(t, int64(10), event.Reminders.Overrides[0].Minutes)
}

func TestHandleCreateEventAllDay(t *testing.T) {
	sc, srv := newTestContext(t)

	request := createEventRequest(map[string]any{
		"summary":    "Offsite",
		"start_time": "2024-03-01",
		"end_time":   "2024-03-01",
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	inserted := srv.Inserted()
	require.Len(t, inserted, 1)
	assert.Equal(t, "2024-03-01", inserted[0].Start.Date)
	// The exclusive end date of a one-day event is the following day.
	assert.Equal(t, "2024-03-02", inserted[0].End.Date)
}

func TestHandleCreateEventOptionalFields(t *testing.T) {
	sc, srv := newTestContext(t)

	request := createEventRequest(map[string]any{
		"summary":     "Planning",
		"start_time":  "2024-03-01T09:00:00Z",
		"end_time":    "2024-03-01T10:00:00Z",
		"description": "Q2 planning",
		"location":    "Room 4",
		"attendees":   []any{" a@example.com ", "", "b@example.com"},
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	inserted := srv.Inserted()
	require.Len(t, inserted, 1)
	event := inserted[0]
	assert.Equal(t, "Q2 planning", event.Description)
	assert.Equal(t, "Room 4", event.Location)
	require.Len(t, event.Attendees, 2)
	assert.Equal(t, "a@example.com", event.Attendees[0].Email)
	assert.Equal(t, "b@example.com", event.Attendees[1].Email)
}

func TestHandleCreateEventReminders(t *testing.T) {
	sc, srv := newTestContext(t)

	request := createEventRequest(map[string]any{
		"summary":    "Standup",
		"start_time": "2024-03-01T09:00:00Z",
		"end_time":   "2024-03-01T10:00:00Z",
		"reminders": map[string]any{
			"useDefault": false,
			"overrides": []any{
				map[string]any{"method": "email", "minutes": float64(60)},
				map[string]any{"method": "popup", "minutes": float64(99999)},
			},
		},
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	inserted := srv.Inserted()
	require.Len(t, inserted, 1)
	overrides := inserted[0].Reminders.Overrides
	require.Len(t, overrides, 2)
	assert.Equal(t, "email", overrides[0].Method)
	assert.Equal(t, int64(60), overrides[0].Minutes)
	// Out-of-range minutes are clamped, not rejected.
	assert.Equal(t, int64(calendar.MaxReminderMinutes), overrides[1].Minutes)
}

func TestHandleCreateEventMeetLink(t *testing.T) {
	sc, srv := newTestContext(t)

	request := createEventRequest(map[string]any{
		"summary":          "Sync",
		"start_time":       "2024-03-01T09:00:00Z",
		"end_time":         "2024-03-01T10:00:00Z",
		"create_meet_link": true,
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	inserted := srv.Inserted()
	require.Len(t, inserted, 1)
	require.NotNil(t, inserted[0].ConferenceData)
	require.NotNil(t, inserted[0].ConferenceData.CreateRequest)
	assert.Contains(t, inserted[0].ConferenceData.CreateRequest.RequestId, "meet-")
}

func TestHandleCreateEventValidation(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		wantDetail string
	}{
		{
			name: "missing summary",
			args: map[string]any{
				"start_time": "2024-03-01T09:00:00Z",
				"end_time":   "2024-03-01T10:00:00Z",
			},
			wantDetail: "summary is required",
		},
		{
			name: "missing start_time",
			args: map[string]any{
				"summary":  "Standup",
				"end_time": "2024-03-01T10:00:00Z",
			},
			wantDetail: "start_time is required",
		},
		{
			name: "missing end_time",
			args: map[string]any{
				"summary":    "Standup",
				"start_time": "2024-03-01T09:00:00Z",
			},
			wantDetail: "end_time is required",
		},
		{
			name: "unparseable start_time",
			args: map[string]any{
				"summary":    "Standup",
				"start_time": "next tuesday",
				"end_time":   "2024-03-01T10:00:00Z",
			},
			wantDetail: "invalid time format",
		},
		{
			name: "end before start",
			args: map[string]any{
				"summary":    "Standup",
				"start_time": "2024-03-01T09:00:00+09:00",
				"end_time":   "2024-03-01T08:00:00+09:00",
			},
			wantDetail: "end must be after start",
		},
		{
			name: "unknown timezone",
			args: map[string]any{
				"summary":     "Standup",
				"start_time":  "2024-03-01T09:00:00",
				"end_time":    "2024-03-01T10:00:00",
				"timezone_id": "Mars/Olympus_Mons",
			},
			wantDetail: "unknown timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, srv := newTestContext(t)

			result, err := handleCreateEvent(context.Background(), createEventRequest(tt.args), sc)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantDetail)

			// Validation failures never reach the API.
			assert.Equal(t, 0, srv.Requests())
		})
	}
}

func TestHandleCreateEventAPIFailure(t *testing.T) {
	sc, srv := newTestContext(t)
	srv.FailWith(403)

	request := createEventRequest(map[string]any{
		"summary":    "Standup",
		"start_time": "2024-03-01T09:00:00Z",
		"end_time":   "2024-03-01T10:00:00Z",
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// The upstream status survives into the error string.
	text := resultText(t, result)
	assert.Contains(t, text, "Failed to create event")
	assert.Contains(t, text, "403")
}

func TestHandleCreateEventRetriesTransientFailures(t *testing.T) {
	sc, srv := newTestContext(t)
	srv.FailWith(429, 503)

	request := createEventRequest(map[string]any{
		"summary":    "Standup",
		"start_time": "2024-03-01T09:00:00Z",
		"end_time":   "2024-03-01T10:00:00Z",
	})

	result, err := handleCreateEvent(context.Background(), request, sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 3, srv.Requests())
}
