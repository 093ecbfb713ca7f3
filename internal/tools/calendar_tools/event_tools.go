package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tobedoit/gcalendar-mcp/internal/calendar"
	"github.com/tobedoit/gcalendar-mcp/internal/server"
	"github.com/tobedoit/gcalendar-mcp/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createEventTool := mcp.NewTool("create_event",
		mcp.WithDescription("Create a new Google Calendar event. Supports timed events, all-day events, attendees, reminders, and Google Meet links."),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time: 'YYYY-MM-DD' for an all-day event, or an ISO-8601 timestamp (e.g. '2025-01-15T14:00:00+01:00'). A timestamp without a UTC offset is interpreted in the event's timezone."),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time, same formats as start_time. For all-day events the end date is exclusive."),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Attendee email addresses"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithObject("reminders",
			mcp.Description("Reminder settings. Defaults to a popup 10 minutes before the event."),
			mcp.Properties(map[string]any{
				"useDefault": map[string]any{
					"type":        "boolean",
					"description": "Use the calendar's default reminders",
				},
				"overrides": map[string]any{
					"type":        "array",
					"description": "Reminder overrides, each {method: popup|email, minutes: 0-40320}",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"method":  map[string]any{"type": "string"},
							"minutes": map[string]any{"type": "number"},
						},
					},
				},
			}),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("timezone_id",
			mcp.Description("IANA timezone for interpreting offset-less times (default: server timezone)"),
		),
		mcp.WithBoolean("create_meet_link",
			mcp.Description("Attach a Google Meet link to the event"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	return nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	startStr, ok := args["start_time"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start_time is required"), nil
	}
	endStr, ok := args["end_time"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end_time is required"), nil
	}

	calendarID := "primary"
	if v, ok := args["calendar_id"].(string); ok && v != "" {
		calendarID = v
	}

	loc := sc.TimeZone()
	if tz, ok := args["timezone_id"].(string); ok && tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: unknown timezone %q", tz)), nil
		}
	}

	start, err := calendar.ParseTimeSpec(startStr, loc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}
	end, err := calendar.ParseTimeSpec(endStr, loc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	span, err := calendar.NormalizeSpan(start, end, loc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	opts := calendar.EventOptions{
		Attendees: calendar.NormalizeAttendees(stringSlice(args["attendees"])),
	}
	if v, ok := args["description"].(string); ok {
		opts.Description = v
	}
	if v, ok := args["location"].(string); ok {
		opts.Location = v
	}
	if v, ok := args["create_meet_link"].(bool); ok {
		opts.CreateMeetLink = v
	}
	if v, ok := args["reminders"].(map[string]any); ok {
		opts.Reminders = reminderPolicy(v)
	}

	event := calendar.BuildEvent(summary, span, opts)

	client, err := sc.CalendarClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	created, err := client.CreateEvent(ctx, calendarID, event)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event created: %s", created.HtmlLink)), nil
}

// stringSlice extracts string entries from a JSON-decoded array argument.
// Non-string entries are skipped.
func stringSlice(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// reminderPolicy converts the structured reminders argument into a
// ReminderPolicy. Minute values arrive as JSON numbers and are clamped
// by the payload builder.
func reminderPolicy(raw map[string]any) *calendar.ReminderPolicy {
	policy := &calendar.ReminderPolicy{}

	if v, ok := raw["useDefault"].(bool); ok {
		policy.UseDefault = v
	}

	overrides, ok := raw["overrides"].([]any)
	if !ok {
		return policy
	}
	for _, item := range overrides {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		override := calendar.ReminderOverride{Method: "popup"}
		if method, ok := entry["method"].(string); ok && method != "" {
			override.Method = method
		}
		if minutes, ok := entry["minutes"].(float64); ok {
			override.Minutes = int64(minutes)
		}
		policy.Overrides = append(policy.Overrides, override)
	}

	return policy
}
