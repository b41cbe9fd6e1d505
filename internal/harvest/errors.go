// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when Search is called without query text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidLimit is returned when Search is called with limit <= 0.
	ErrInvalidLimit = errors.New("limit must be greater than zero")

	// ErrMalformedBatch marks a batch the harvester cannot make progress with.
	ErrMalformedBatch = errors.New("malformed search batch")
)

// maxBodyInError bounds how much of a raw response body is echoed in Error().
const maxBodyInError = 200

// SearchExecutionError reports a failed or unparseable query. It aborts the
// whole harvest; no partial results accompany it.
type SearchExecutionError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// RawBody is the response body as received.
	RawBody string

	// Err is the underlying cause, if any.
	Err error
}

func (e *SearchExecutionError) Error() string {
	msg := "search execution failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.RawBody != "" {
		body := e.RawBody
		if len(body) > maxBodyInError {
			body = body[:maxBodyInError] + "..."
		}
		msg += fmt.Sprintf(" (body: %q)", body)
	}
	return msg
}

func (e *SearchExecutionError) Unwrap() error { return e.Err }

// asExecutionError returns err unchanged if it already carries a
// *SearchExecutionError, and wraps it in one otherwise.
func asExecutionError(err error) error {
	var see *SearchExecutionError
	if errors.As(err, &see) {
		return err
	}
	return &SearchExecutionError{Err: err}
}

// DegenerateIntervalError describes an interval that still exceeds the
// per-query cap but cannot be bisected further. It is recovered locally:
// the interval is accepted as-is and some of its results are unreachable.
type DegenerateIntervalError struct {
	Interval Interval
	Total    int
	Cap      int
}

func (e *DegenerateIntervalError) Error() string {
	return fmt.Sprintf("interval %s reports %d matches, over the cap of %d, and cannot be split; at most %d are reachable",
		e.Interval, e.Total, e.Cap, e.Cap)
}
