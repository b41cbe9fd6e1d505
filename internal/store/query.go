// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/media-miner/pkg/types"
)

const runColumns = `id, query, requested, results, probes, pages, started_at, COALESCE(finished_at, '')`

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose ID equals id or, failing that, the single
// run whose ID starts with id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	if id == "" {
		return Run{}, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? || '%' ORDER BY id = ? DESC LIMIT 2`,
		id, id, id)
	if err != nil {
		return Run{}, fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}

	switch {
	case len(matches) == 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case matches[0].ID == id || len(matches) == 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run prefix %q is ambiguous", id)
	}
}

// RunPhotos returns the photos saved for runID in harvest order.
func (s *Store) RunPhotos(ctx context.Context, runID string) ([]types.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.owner, p.secret, p.server, p.farm, p.title, p.is_public
		 FROM run_photos rp JOIN photos p ON p.id = rp.photo_id
		 WHERE rp.run_id = ?
		 ORDER BY rp.rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run photos: %w", err)
	}
	defer rows.Close()

	var photos []types.Photo
	for rows.Next() {
		var p types.Photo
		if err := rows.Scan(&p.ID, &p.Owner, &p.Secret, &p.Server, &p.Farm, &p.Title, &p.IsPublic); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// CountPhotos returns the number of distinct photos stored.
func (s *Store) CountPhotos(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM photos`).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("counting photos: %w", err)
	}
	return n, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var r Run
	var started, finished string
	if err := rows.Scan(&r.ID, &r.Query, &r.Requested, &r.Results, &r.Probes, &r.Pages, &started, &finished); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	var err error
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parsing started_at of run %s: %w", r.ID, err)
	}
	if finished != "" {
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return Run{}, fmt.Errorf("parsing finished_at of run %s: %w", r.ID, err)
		}
	}
	return r, nil
}
