// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest retrieves up to a requested number of results from a
// search service that caps how many matches any single query can reach.
//
// The search universe (upload time, from the service's earliest date until
// now) is bisected until every interval reports a match count under the cap,
// then each interval is paged through in turn until the requested number of
// results is collected. All queries run sequentially: each split decision
// depends on the total reported by the probe just before it.
package harvest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/media-miner/pkg/types"
)

// DefaultLimit is the number of results Search returns when the caller has
// no preference.
const DefaultLimit = 20

// Harvester drives the splitter and the walker for one search service.
type Harvester struct {
	Exec   Executor
	Limits types.ServiceLimits

	// PerPage is the preferred page size. Zero means use the search limit,
	// clamped to Limits.MaxPageSize.
	PerPage int

	// Now returns the upper bound of the search universe. Nil means time.Now.
	Now func() time.Time

	// Log receives progress lines. Nil discards.
	Log io.Writer
}

// IntervalYield records how many results one finalized interval produced.
type IntervalYield struct {
	Interval Interval `json:"interval" yaml:"interval"`
	Reported int      `json:"reported" yaml:"reported"`
	Results  int      `json:"results" yaml:"results"`
}

// Report summarizes one harvest.
type Report struct {
	Range      Interval        `json:"range" yaml:"range"`
	Finalized  []Interval      `json:"finalized" yaml:"finalized"`
	Yields     []IntervalYield `json:"yields" yaml:"yields"`
	Probes     int             `json:"probes" yaml:"probes"`
	Pages      int             `json:"pages" yaml:"pages"`
	Degenerate int             `json:"degenerate" yaml:"degenerate"`
	Unresolved int             `json:"unresolved" yaml:"unresolved"`
}

// Search returns up to limit results for query, in per-interval relevance
// order. A result shorter than limit means the service ran out of reachable
// matches; zero matches is not an error.
func (h *Harvester) Search(ctx context.Context, query string, limit int) ([]types.Photo, error) {
	results, _, err := h.SearchWithReport(ctx, query, limit)
	return results, err
}

// SearchWithReport is Search plus a Report of the queries it issued. On
// error the results are nil; the report covers the work done up to the
// failure.
func (h *Harvester) SearchWithReport(ctx context.Context, query string, limit int) ([]types.Photo, Report, error) {
	if strings.TrimSpace(query) == "" {
		return nil, Report{}, ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, Report{}, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	log := h.Log
	if log == nil {
		log = io.Discard
	}

	exec := &countingExecutor{next: h.Exec}
	report := Report{Range: h.fullRange()}

	splitter := &Splitter{
		Exec:        exec,
		Cap:         h.Limits.PerQueryCap,
		MaxPageSize: h.Limits.MaxPageSize,
		Log:         log,
	}
	part, err := splitter.Partition(ctx, query, report.Range, limit)
	report.Probes = part.Probes
	if err != nil {
		report.Probes = exec.calls
		return nil, report, err
	}
	report.Finalized = part.Intervals
	report.Degenerate = part.Degenerate
	report.Unresolved = part.Unresolved
	fmt.Fprintf(log, "partitioned %s into %d interval(s) after %d probe(s)\n",
		report.Range, len(part.Intervals), part.Probes)

	perPage := h.PerPage
	if perPage <= 0 {
		perPage = limit
	}
	walker := &Walker{Exec: exec, MaxPageSize: h.Limits.MaxPageSize}

	var results []types.Photo
	for i, iv := range part.Intervals {
		got, err := walker.Drain(ctx, query, iv, perPage, h.Limits.PerQueryCap, limit-len(results))
		report.Pages = exec.calls - part.Probes
		if err != nil {
			return nil, report, err
		}
		results = append(results, got...)
		report.Yields = append(report.Yields, IntervalYield{Interval: iv, Reported: part.Totals[i], Results: len(got)})
		fmt.Fprintf(log, "interval %s: %d result(s), %d/%d collected\n", iv, len(got), len(results), limit)

		if len(results) >= limit {
			break
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, report, nil
}

func (h *Harvester) fullRange() Interval {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return NewInterval(h.Limits.Earliest, now())
}

// countingExecutor counts the queries passed through to next.
type countingExecutor struct {
	next  Executor
	calls int
}

func (c *countingExecutor) Execute(ctx context.Context, req SearchRequest) (SearchBatch, error) {
	c.calls++
	return c.next.Execute(ctx, req)
}
