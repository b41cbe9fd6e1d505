// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-miner/internal/httputil"
	"github.com/pdiddy/media-miner/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func imageServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var inFlight, peak int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("JPEG:" + strings.TrimPrefix(r.URL.Path, "/")))
	}))
	t.Cleanup(ts.Close)
	return ts, &peak
}

func photos(ids ...string) []types.Photo {
	var out []types.Photo
	for _, id := range ids {
		out = append(out, types.Photo{ID: id})
	}
	return out
}

func TestDownloadAll(t *testing.T) {
	ts, peak := imageServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.jpg"), []byte("old"), 0o644))

	var log bytes.Buffer
	d := &Downloader{
		Client: ts.Client(),
		Config: types.DownloadConfig{Dir: dir, Concurrency: 2},
		URLFor: func(p types.Photo) string {
			if p.ID == "bad" {
				return ts.URL + "/missing"
			}
			return ts.URL + "/" + p.ID
		},
		Log: &log,
	}

	sum, err := d.DownloadAll(context.Background(), photos("a", "b", "c", "d", "existing", "bad"))
	require.NoError(t, err)
	assert.Equal(t, Summary{Downloaded: 4, Skipped: 1, Failed: 1}, sum)
	assert.True(t, sum.HasFailures())
	assert.LessOrEqual(t, atomic.LoadInt32(peak), int32(2))

	data, err := os.ReadFile(filepath.Join(dir, "c.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "JPEG:c", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "existing.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	_, err = os.Stat(filepath.Join(dir, "bad.jpg"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, log.String(), "failed     bad: HTTP 404")

	leftovers, err := filepath.Glob(filepath.Join(dir, ".part-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadAllCancelled(t *testing.T) {
	ts, _ := imageServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &Downloader{
		Client: ts.Client(),
		Config: types.DownloadConfig{Dir: t.TempDir(), Concurrency: 1},
		URLFor: func(p types.Photo) string { return ts.URL + "/" + p.ID },
	}
	_, err := d.DownloadAll(ctx, photos("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
}
