// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"io"
)

// Splitter divides a search universe into intervals whose reported match
// counts fit under the service's per-query cap.
type Splitter struct {
	Exec Executor

	// Cap is the per-query cap. A Cap <= 0 disables splitting.
	Cap int

	// MaxPageSize bounds probe requests; see NewRequest.
	MaxPageSize int

	// Log receives a line per degenerate interval. Nil discards.
	Log io.Writer
}

// PartitionResult is the outcome of Splitter.Partition.
type PartitionResult struct {
	// Intervals are the finalized intervals in the order they should be paged.
	Intervals []Interval

	// Totals holds the reported match count of each finalized interval, or -1
	// for intervals left unresolved when the limit was reached.
	Totals []int

	// Covered is the sum of reachable matches across resolved intervals.
	Covered int

	// Probes counts the queries issued.
	Probes int

	// Degenerate counts intervals accepted over the cap because they could
	// not be split.
	Degenerate int

	// Unresolved counts intervals appended without a probe because the limit
	// was already covered.
	Unresolved int
}

// Partition covers full with intervals safe to paginate. It probes each
// candidate for its reported total: candidates over the cap are bisected and
// both halves are examined before any older candidate (depth first); the rest
// are finalized. Probing stops once the finalized intervals account for more
// than limit matches, and whatever is still pending is appended unprobed.
//
// Covered counts each finalized interval once, at min(total, cap), so the
// stopping point is an estimate: overlapping boundaries and the cap itself
// mean the real yield may differ.
func (s *Splitter) Partition(ctx context.Context, query string, full Interval, limit int) (PartitionResult, error) {
	if s.Cap <= 0 {
		return PartitionResult{Intervals: []Interval{full}, Totals: []int{-1}, Unresolved: 1}, nil
	}
	log := s.Log
	if log == nil {
		log = io.Discard
	}

	var res PartitionResult
	pending := []Interval{full}

	for len(pending) > 0 && res.Covered <= limit {
		iv := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if err := ctx.Err(); err != nil {
			return PartitionResult{}, fmt.Errorf("probing %s: %w", iv, asExecutionError(err))
		}
		batch, err := s.Exec.Execute(ctx, NewRequest(query, 1, probePageSize, s.MaxPageSize, &iv))
		res.Probes++
		if err != nil {
			return PartitionResult{}, fmt.Errorf("probing %s: %w", iv, asExecutionError(err))
		}
		if batch.Total < 0 {
			return PartitionResult{}, &SearchExecutionError{
				Err: fmt.Errorf("%w: negative total %d for %s", ErrMalformedBatch, batch.Total, iv),
			}
		}

		if batch.Total <= s.Cap {
			res.Intervals = append(res.Intervals, iv)
			res.Totals = append(res.Totals, batch.Total)
			res.Covered += batch.Total
			continue
		}

		lo, hi, ok := iv.Split()
		if !ok {
			derr := &DegenerateIntervalError{Interval: iv, Total: batch.Total, Cap: s.Cap}
			fmt.Fprintf(log, "warning: %v\n", derr)
			res.Degenerate++
			res.Intervals = append(res.Intervals, iv)
			res.Totals = append(res.Totals, batch.Total)
			res.Covered += s.Cap
			continue
		}
		pending = append(pending, lo, hi)
	}

	res.Unresolved = len(pending)
	for _, iv := range pending {
		res.Intervals = append(res.Intervals, iv)
		res.Totals = append(res.Totals, -1)
	}
	return res, nil
}
