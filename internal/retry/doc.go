// Package retry provides a generic retry policy with exponential backoff
// and jitter for wrapping transient-failure-prone operations.
//
// The policy is independent of what it wraps: callers supply the operation
// and a predicate deciding which errors are worth retrying. Errors the
// predicate rejects propagate immediately; once the attempt budget is
// exhausted the last error is returned unchanged.
package retry
