// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"

	"github.com/pdiddy/media-miner/pkg/types"
)

// Executor issues one bounded query against the search service. It is the
// boundary between the harvesting algorithm and the transport; the Flickr
// client in internal/flickr is the production implementation.
//
// Any failure must be reported as a *SearchExecutionError (or an error
// wrapping one); the harvester treats every executor error as fatal.
type Executor interface {
	Execute(ctx context.Context, req SearchRequest) (SearchBatch, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req SearchRequest) (SearchBatch, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, req SearchRequest) (SearchBatch, error) {
	return f(ctx, req)
}

// SearchRequest describes one outbound query. Build it with NewRequest.
type SearchRequest struct {
	Text     string
	Page     int
	PerPage  int
	Interval *Interval
}

// SearchBatch is the parsed result of one SearchRequest.
type SearchBatch struct {
	Items []types.Photo

	// NextPage is the page to request next, or 0 when the result set is
	// exhausted.
	NextPage int

	// Total is the match count the service reports for the queried interval.
	Total int
}

// probePageSize is the page size used when only the reported total matters.
const probePageSize = 1

// NewRequest builds a SearchRequest, clamping page to at least 1 and perPage
// to [1, maxPageSize]. A maxPageSize <= 0 leaves perPage unbounded above.
// The interval is copied so later changes by the caller do not leak in.
func NewRequest(text string, page, perPage, maxPageSize int, iv *Interval) SearchRequest {
	if page < 1 {
		page = 1
	}
	if maxPageSize > 0 && perPage > maxPageSize {
		perPage = maxPageSize
	}
	if perPage < 1 {
		perPage = 1
	}
	req := SearchRequest{Text: text, Page: page, PerPage: perPage}
	if iv != nil {
		c := *iv
		req.Interval = &c
	}
	return req
}
