package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"
)

// MaxReminderMinutes caps reminder overrides at 28 days, the limit the
// Calendar API enforces.
const MaxReminderMinutes = 40320

// ReminderOverride is a single reminder: how to notify and how many
// minutes before the event.
type ReminderOverride struct {
	Method  string
	Minutes int64
}

// ReminderPolicy controls event reminders. When UseDefault is set the
// calendar's own defaults apply and Overrides are ignored by the API.
type ReminderPolicy struct {
	UseDefault bool
	Overrides  []ReminderOverride
}

// DefaultReminderPolicy is applied when the caller supplies no reminder
// settings: a popup 10 minutes before the event.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		UseDefault: false,
		Overrides:  []ReminderOverride{{Method: "popup", Minutes: 10}},
	}
}

// ClampMinutes forces a reminder offset into [0, MaxReminderMinutes].
func ClampMinutes(minutes int64) int64 {
	if minutes < 0 {
		return 0
	}
	if minutes > MaxReminderMinutes {
		return MaxReminderMinutes
	}
	return minutes
}

// NormalizeAttendees trims each entry and drops blanks. An input that
// normalizes to nothing returns nil so the field is omitted from the
// payload instead of being sent as an empty list.
func NormalizeAttendees(raw []string) []string {
	var out []string
	for _, email := range raw {
		email = strings.TrimSpace(email)
		if email != "" {
			out = append(out, email)
		}
	}
	return out
}

// EventOptions carries the optional create_event fields.
type EventOptions struct {
	Description string
	Location    string

	// Attendees must already be normalized; nil omits the field.
	Attendees []string

	// Reminders nil selects DefaultReminderPolicy.
	Reminders *ReminderPolicy

	// CreateMeetLink attaches a conference-creation request with a fresh
	// per-call request id.
	CreateMeetLink bool
}

// BuildEvent assembles the outbound event document. Optional fields are
// omitted entirely when absent — the remote schema distinguishes absence
// from empty values for some of them. Aside from the conference request
// id, identical inputs produce identical documents.
func BuildEvent(summary string, span Span, opts EventOptions) *calendar.Event {
	event := &calendar.Event{
		Summary:   summary,
		Start:     eventDateTime(span.Start),
		End:       eventDateTime(span.End),
		Reminders: buildReminders(opts.Reminders),
	}

	if opts.Description != "" {
		event.Description = opts.Description
	}
	if opts.Location != "" {
		event.Location = opts.Location
	}

	if len(opts.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(opts.Attendees))
		for _, email := range opts.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}

	if opts.CreateMeetLink {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: newConferenceRequestID(),
			},
		}
	}

	return event
}

// eventDateTime renders a TimeSpec in the wire shape: Date for all-day
// ends, DateTime plus TimeZone for timed ends.
func eventDateTime(ts TimeSpec) *calendar.EventDateTime {
	if ts.Kind == KindAllDay {
		return &calendar.EventDateTime{
			Date: ts.Date.Format(allDayLayout),
		}
	}
	return &calendar.EventDateTime{
		DateTime: ts.Instant.Format(time.RFC3339),
		TimeZone: ts.TimeZone,
	}
}

func buildReminders(policy *ReminderPolicy) *calendar.EventReminders {
	p := DefaultReminderPolicy()
	if policy != nil {
		p = *policy
	}

	reminders := &calendar.EventReminders{
		UseDefault: p.UseDefault,
		// UseDefault:false must be serialized explicitly or the API falls
		// back to the calendar defaults.
		ForceSendFields: []string{"UseDefault"},
	}

	for _, o := range p.Overrides {
		reminder := &calendar.EventReminder{
			Method:  o.Method,
			Minutes: ClampMinutes(o.Minutes),
		}
		if reminder.Minutes == 0 {
			reminder.ForceSendFields = []string{"Minutes"}
		}
		reminders.Overrides = append(reminders.Overrides, reminder)
	}

	return reminders
}

// newConferenceRequestID returns a request id unique per call. The
// Calendar API uses it to deduplicate conference-creation attempts, so
// an id must never be reused across two different calls.
func newConferenceRequestID() string {
	return "meet-" + uuid.NewString()
}
