package calendar

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedSpan(t *testing.T) Span {
	t.Helper()
	loc := mustLocation(t, "Europe/Berlin")
	start, err := ParseTimeSpec("2024-03-01T09:00:00+01:00", loc)
	require.NoError(t, err)
	end, err := ParseTimeSpec("2024-03-01T10:00:00+01:00", loc)
	require.NoError(t, err)
	span, err := NormalizeSpan(start, end, loc)
	require.NoError(t, err)
	return span
}

func TestNormalizeAttendees(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil stays nil", nil, nil},
		{"empty becomes nil", []string{}, nil},
		{"blanks dropped", []string{"", "  ", "a@example.com"}, []string{"a@example.com"}},
		{"whitespace trimmed", []string{" a@example.com ", "b@example.com"}, []string{"a@example.com", "b@example.com"}},
		{"all blank becomes nil", []string{"", "   "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAttendees(tt.in))
		})
	}
}

func TestClampMinutes(t *testing.T) {
	assert.Equal(t, int64(0), ClampMinutes(-5))
	assert.Equal(t, int64(0), ClampMinutes(0))
	assert.Equal(t, int64(10), ClampMinutes(10))
	assert.Equal(t, int64(MaxReminderMinutes), ClampMinutes(MaxReminderMinutes))
	assert.Equal(t, int64(MaxReminderMinutes), ClampMinutes(MaxReminderMinutes+1))
}

func TestBuildEventDefaults(t *testing.T) {
	event := BuildEvent("standup", timedSpan(t), EventOptions{})

	assert.Equal(t, "standup", event.Summary)
	assert.Empty(t, event.Description)
	assert.Empty(t, event.Location)
	assert.Nil(t, event.Attendees)
	assert.Nil(t, event.ConferenceData)

	require.NotNil(t, event.Reminders)
	assert.False(t, event.Reminders.UseDefault)
	require.Len(t, event.Reminders.Overrides, 1)
	assert.Equal(t, "popup", event.Reminders.Overrides[0].Method)
	assert.Equal(t, int64(10), event.Reminders.Overrides[0].Minutes)
}

func TestBuildEventTimedEnds(t *testing.T) {
	event := BuildEvent("standup", timedSpan(t), EventOptions{})

	require.NotNil(t, event.Start)
	assert.Empty(t, event.Start.Date)
	assert.Equal(t, "2024-03-01T09:00:00+01:00", event.Start.DateTime)
	assert.Equal(t, "Europe/Berlin", event.Start.TimeZone)
	assert.Equal(t, "2024-03-01T10:00:00+01:00", event.End.DateTime)
}

func TestBuildEventAllDayEnds(t *testing.T) {
	start := AllDay(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	span, err := NormalizeSpan(start, start, time.UTC)
	require.NoError(t, err)

	event := BuildEvent("offsite", span, EventOptions{})

	assert.Equal(t, "2024-03-01", event.Start.Date)
	assert.Empty(t, event.Start.DateTime)
	assert.Empty(t, event.Start.TimeZone)
	assert.Equal(t, "2024-03-02", event.End.Date)
}

func TestBuildEventOptionalFields(t *testing.T) {
	event := BuildEvent("planning", timedSpan(t), EventOptions{
		Description: "Q2 planning",
		Location:    "Room 4",
		Attendees:   []string{"a@example.com", "b@example.com"},
	})

	assert.Equal(t, "Q2 planning", event.Description)
	assert.Equal(t, "Room 4", event.Location)
	require.Len(t, event.Attendees, 2)
	assert.Equal(t, "a@example.com", event.Attendees[0].Email)
	assert.Equal(t, "b@example.com", event.Attendees[1].Email)
}

func TestBuildEventReminderClamping(t *testing.T) {
	event := BuildEvent("standup", timedSpan(t), EventOptions{
		Reminders: &ReminderPolicy{
			Overrides: []ReminderOverride{
				{Method: "email", Minutes: -1},
				{Method: "popup", Minutes: 99999},
			},
		},
	})

	require.Len(t, event.Reminders.Overrides, 2)
	assert.Equal(t, int64(0), event.Reminders.Overrides[0].Minutes)
	assert.Equal(t, int64(MaxReminderMinutes), event.Reminders.Overrides[1].Minutes)
}

func TestBuildEventReminderSerialization(t *testing.T) {
	t.Run("explicit useDefault false survives encoding", func(t *testing.T) {
		event := BuildEvent("standup", timedSpan(t), EventOptions{})

		raw, err := json.Marshal(event.Reminders)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"useDefault":false`)
	})

	t.Run("zero-minute override survives encoding", func(t *testing.T) {
		event := BuildEvent("standup", timedSpan(t), EventOptions{
			Reminders: &ReminderPolicy{
				Overrides: []ReminderOverride{{Method: "popup", Minutes: 0}},
			},
		})

		raw, err := json.Marshal(event.Reminders.Overrides[0])
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"minutes":0`)
	})
}

func TestBuildEventConference(t *testing.T) {
	span := timedSpan(t)

	first := BuildEvent("sync", span, EventOptions{CreateMeetLink: true})
	second := BuildEvent("sync", span, EventOptions{CreateMeetLink: true})

	require.NotNil(t, first.ConferenceData)
	require.NotNil(t, first.ConferenceData.CreateRequest)

	firstID := first.ConferenceData.CreateRequest.RequestId
	secondID := second.ConferenceData.CreateRequest.RequestId
	assert.True(t, strings.HasPrefix(firstID, "meet-"), "request id %q", firstID)
	assert.NotEqual(t, firstID, secondID, "conference request ids must be unique per call")
}

func TestBuildEventDeterministic(t *testing.T) {
	opts := EventOptions{
		Description: "weekly",
		Attendees:   []string{"a@example.com"},
	}
	span := timedSpan(t)

	first, err := json.Marshal(BuildEvent("sync", span, opts))
	require.NoError(t, err)
	second, err := json.Marshal(BuildEvent("sync", span, opts))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
