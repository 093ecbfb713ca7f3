package calendar

import (
	"fmt"
	"time"
)

// Layouts accepted for caller-supplied times.
const (
	allDayLayout = "2006-01-02"
	// localLayout covers ISO-8601 timestamps without a UTC offset; they
	// are interpreted in the request's timezone.
	localLayout = "2006-01-02T15:04:05"
)

// TimeSpecKind discriminates the two shapes of an event time.
type TimeSpecKind int

const (
	// KindAllDay is a whole calendar date with no time-of-day.
	KindAllDay TimeSpecKind = iota
	// KindTimed is a precise instant with a display timezone.
	KindTimed
)

// TimeSpec is a tagged variant: either an all-day calendar date or a
// timed instant with an IANA timezone applied for display. Use AllDay or
// Timed to construct one so only the fields of its kind are populated.
type TimeSpec struct {
	Kind TimeSpecKind

	// Date is set only for KindAllDay: the calendar date at midnight UTC.
	Date time.Time

	// Instant and TimeZone are set only for KindTimed.
	Instant  time.Time
	TimeZone string
}

// AllDay returns an all-day TimeSpec for the given date. Any time-of-day
// component is dropped.
func AllDay(date time.Time) TimeSpec {
	y, m, d := date.Date()
	return TimeSpec{
		Kind: KindAllDay,
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// Timed returns a timed TimeSpec for the given instant with the given
// display timezone.
func Timed(instant time.Time, timeZone string) TimeSpec {
	return TimeSpec{
		Kind:     KindTimed,
		Instant:  instant,
		TimeZone: timeZone,
	}
}

// Span is a normalized (start, end) pair. The two ends may carry
// different kinds; downstream consumers must handle heterogeneous spans.
type Span struct {
	Start TimeSpec
	End   TimeSpec
}

// ParseTimeSpec classifies and parses a caller-supplied time string.
// A string of exactly 10 characters matching YYYY-MM-DD is an all-day
// date. Anything else must be an ISO-8601 timestamp: RFC 3339 with an
// offset (a trailing Z means +00:00), or offset-less, in which case it is
// interpreted in loc. Unparseable input fails with ErrInvalidTimeFormat.
func ParseTimeSpec(value string, loc *time.Location) (TimeSpec, error) {
	if len(value) == len(allDayLayout) {
		if date, err := time.Parse(allDayLayout, value); err == nil {
			return AllDay(date), nil
		}
	}

	if instant, err := time.Parse(time.RFC3339, value); err == nil {
		return Timed(instant, loc.String()), nil
	}
	if instant, err := time.ParseInLocation(localLayout, value, loc); err == nil {
		return Timed(instant, loc.String()), nil
	}

	return TimeSpec{}, fmt.Errorf("%w: %q is neither a YYYY-MM-DD date nor an ISO-8601 timestamp", ErrInvalidTimeFormat, value)
}

// instantIn resolves a TimeSpec to an instant for comparison purposes.
// An all-day date is taken as local midnight in loc; this interpretation
// is used only to order mixed spans, never stored back into the value.
// Note that across timezones this midnight heuristic can shift the
// comparison by up to a day relative to the caller's intent.
func (ts TimeSpec) instantIn(loc *time.Location) time.Time {
	if ts.Kind == KindTimed {
		return ts.Instant
	}
	y, m, d := ts.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NormalizeSpan validates and repairs a (start, end) pair.
//
// When both ends are all-day and the end does not come after the start,
// the end is silently bumped to start + 1 day (the remote schema treats
// all-day end dates as exclusive, so a one-day event spans exactly that).
// When at least one end is timed, the instants are compared — the all-day
// side of a mixed span evaluated at local midnight in loc — and an end at
// or before the start fails with ErrInvalidSpan.
func NormalizeSpan(start, end TimeSpec, loc *time.Location) (Span, error) {
	if start.Kind == KindAllDay && end.Kind == KindAllDay {
		if !end.Date.After(start.Date) {
			end = AllDay(start.Date.AddDate(0, 0, 1))
		}
		return Span{Start: start, End: end}, nil
	}

	if !end.instantIn(loc).After(start.instantIn(loc)) {
		return Span{}, ErrInvalidSpan
	}
	return Span{Start: start, End: end}, nil
}
