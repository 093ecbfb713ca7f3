package calendar

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Normalization failures. These are terminal: they never reach the
// network layer and are never retried.
var (
	// ErrInvalidTimeFormat indicates a start/end string that is neither a
	// YYYY-MM-DD date nor a parseable ISO-8601 timestamp.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidSpan indicates a timed span whose end does not come after
	// its start.
	ErrInvalidSpan = errors.New("end must be after start")
)

// IsRetryable classifies a Calendar API failure. An error carrying an
// HTTP status code is retryable only for 429 and 5xx; other coded errors
// (auth, bad request, not found) are terminal. Errors with no extractable
// status code are transport-level and retryable by default, except for
// context cancellation.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return true
		}
		return apiErr.Code >= 500 && apiErr.Code < 600
	}

	return true
}
