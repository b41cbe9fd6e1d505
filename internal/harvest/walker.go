// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"

	"github.com/pdiddy/media-miner/pkg/types"
)

// Walker pages through a single finalized interval.
type Walker struct {
	Exec        Executor
	MaxPageSize int
}

// Drain requests pages of query over iv, starting at page 1 with page size
// min(perPage, MaxPageSize), until the service reports no next page, an
// empty page comes back, hardCap items have been collected, or want items
// have been collected. The result never exceeds hardCap items. A hardCap or
// want <= 0 is treated as unbounded.
func (w *Walker) Drain(ctx context.Context, query string, iv Interval, perPage, hardCap, want int) ([]types.Photo, error) {
	var acc []types.Photo
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetching page %d of %s: %w", page, iv, asExecutionError(err))
		}
		batch, err := w.Exec.Execute(ctx, NewRequest(query, page, perPage, w.MaxPageSize, &iv))
		if err != nil {
			return nil, fmt.Errorf("fetching page %d of %s: %w", page, iv, asExecutionError(err))
		}
		acc = append(acc, batch.Items...)

		if batch.NextPage == 0 || len(batch.Items) == 0 {
			break
		}
		if hardCap > 0 && len(acc) >= hardCap {
			break
		}
		if want > 0 && len(acc) >= want {
			break
		}
		if batch.NextPage <= page {
			return nil, &SearchExecutionError{
				Err: fmt.Errorf("%w: next page %d after page %d of %s", ErrMalformedBatch, batch.NextPage, page, iv),
			}
		}
		page = batch.NextPage
	}

	if hardCap > 0 && len(acc) > hardCap {
		acc = acc[:hardCap]
	}
	return acc, nil
}
