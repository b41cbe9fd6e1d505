// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"time"
)

// Interval is a closed range of upload times, in unix seconds, over which a
// sub-query is executed. Start <= End always holds for intervals produced by
// this package.
type Interval struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

// NewInterval returns the interval [from, to]. A to earlier than from is
// clamped to from so the result is never inverted.
func NewInterval(from, to time.Time) Interval {
	iv := Interval{Start: from.Unix(), End: to.Unix()}
	if iv.End < iv.Start {
		iv.End = iv.Start
	}
	return iv
}

// Width returns End - Start.
func (iv Interval) Width() int64 { return iv.End - iv.Start }

// Midpoint returns the bisection point, rounded toward Start.
func (iv Interval) Midpoint() int64 {
	return iv.Start + (iv.End-iv.Start)/2
}

// Split bisects the interval at its midpoint. The halves share the midpoint.
// ok is false when the midpoint coincides with an endpoint, meaning the
// interval is too narrow to divide further.
func (iv Interval) Split() (lo, hi Interval, ok bool) {
	mid := iv.Midpoint()
	if mid == iv.Start || mid == iv.End {
		return iv, iv, false
	}
	return Interval{Start: iv.Start, End: mid}, Interval{Start: mid, End: iv.End}, true
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return other.Start >= iv.Start && other.End <= iv.End
}

// StartTime and EndTime convert the bounds to UTC times.
func (iv Interval) StartTime() time.Time { return time.Unix(iv.Start, 0).UTC() }
func (iv Interval) EndTime() time.Time   { return time.Unix(iv.End, 0).UTC() }

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.StartTime().Format(time.RFC3339), iv.EndTime().Format(time.RFC3339))
}
