// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download saves harvested images to a local directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/media-miner/internal/httputil"
	"github.com/pdiddy/media-miner/pkg/types"
)

const defaultConcurrency = 4

// Downloader fetches photo images into Dir as {id}.jpg.
type Downloader struct {
	Client *http.Client
	Config types.DownloadConfig

	// URLFor maps a photo to the URL to fetch. Nil means Photo.URL.
	URLFor func(types.Photo) string

	// Log receives one line per photo. Nil discards.
	Log io.Writer
}

// Summary holds counts from a download run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// HasFailures reports whether any download failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// DownloadAll fetches every photo, at most Config.Concurrency at a time.
// Photos already on disk are skipped. A failed photo is logged and counted
// without stopping the others; cancelling ctx stops the run and returns
// ctx.Err().
func (d *Downloader) DownloadAll(ctx context.Context, photos []types.Photo) (Summary, error) {
	if err := os.MkdirAll(d.Config.Dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating download directory: %w", err)
	}
	log := d.Log
	if log == nil {
		log = io.Discard
	}
	limit := d.Config.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	record := func(line string, counter *int) {
		mu.Lock()
		defer mu.Unlock()
		*counter++
		fmt.Fprintln(log, line)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, p := range photos {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(d.Config.Dir, p.ID+".jpg")
			if _, err := os.Stat(path); err == nil {
				record("skipped    "+p.ID, &summary.Skipped)
				return nil
			}
			if err := d.fetch(gctx, p, path); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				record(fmt.Sprintf("failed     %s: %v", p.ID, err), &summary.Failed)
				return nil
			}
			record("downloaded "+p.ID, &summary.Downloaded)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	fmt.Fprintf(log, "\ndownloaded: %d, skipped: %d, failed: %d\n",
		summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, nil
}

// fetch downloads one image to path via a temporary file so a partial
// download never looks complete.
func (d *Downloader) fetch(ctx context.Context, p types.Photo, path string) error {
	url := p.URL()
	if d.URLFor != nil {
		url = d.URLFor(p)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if d.Config.UserAgent != "" {
		req.Header.Set("User-Agent", d.Config.UserAgent)
	}

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: d.Config.Timeout}
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.Config.Dir, ".part-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming image: %w", err)
	}
	return nil
}
