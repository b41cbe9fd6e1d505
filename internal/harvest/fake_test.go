// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/media-miner/pkg/types"
)

// corpus is an in-memory search service. Each photo has an upload time;
// a query matches photos with Start <= time < End (or all photos when no
// interval is given). Like the real service it reports the full match count
// and keeps offering pages past the cap.
type corpus struct {
	times    []int64
	requests []SearchRequest
	failAt   int // 1-based request number to fail on; 0 never fails
}

// uniformCorpus spreads n photos evenly over [start, end).
func uniformCorpus(n int, start, end int64) *corpus {
	c := &corpus{}
	span := end - start
	for i := 0; i < n; i++ {
		c.times = append(c.times, start+int64(i)*span/int64(n))
	}
	return c
}

func (c *corpus) matching(iv *Interval) []int {
	var idx []int
	for i, ts := range c.times {
		if iv == nil || (ts >= iv.Start && ts < iv.End) {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	return idx
}

func (c *corpus) Execute(_ context.Context, req SearchRequest) (SearchBatch, error) {
	c.requests = append(c.requests, req)
	if c.failAt > 0 && len(c.requests) == c.failAt {
		return SearchBatch{}, &SearchExecutionError{StatusCode: 200, RawBody: `jsonFlickrApi({"stat":"fail"`, Err: ErrMalformedBatch}
	}

	idx := c.matching(req.Interval)
	total := len(idx)
	pages := (total + req.PerPage - 1) / req.PerPage

	var batch SearchBatch
	batch.Total = total
	from := (req.Page - 1) * req.PerPage
	for i := from; i < from+req.PerPage && i < total; i++ {
		batch.Items = append(batch.Items, types.Photo{ID: fmt.Sprintf("p%d", idx[i]), Farm: 1, Server: "s", Secret: "x"})
	}
	if req.Page < pages {
		batch.NextPage = req.Page + 1
	}
	return batch, nil
}

// probes returns the requests issued with the probe page size.
func (c *corpus) probes() []SearchRequest {
	var out []SearchRequest
	for _, r := range c.requests {
		if r.PerPage == probePageSize {
			out = append(out, r)
		}
	}
	return out
}

// fixedTotal reports the same total for every interval and never returns items.
type fixedTotal int

func (f fixedTotal) Execute(_ context.Context, _ SearchRequest) (SearchBatch, error) {
	return SearchBatch{Total: int(f)}, nil
}
