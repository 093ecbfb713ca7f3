// Package calendar builds and submits Google Calendar event documents.
//
// It contains the normalization pipeline for caller-supplied times
// (all-day vs timed, span validation and repair), the payload builder
// that assembles the outbound event document, and a client that drives
// the insert through a retry policy classifying transient API failures.
package calendar
