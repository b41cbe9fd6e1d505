// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-miner/pkg/types"
)

func TestFormatTable(t *testing.T) {
	results := []types.Photo{
		{ID: "1", Owner: "me", Title: strings.Repeat("long title ", 10), Farm: 2, Server: "3", Secret: "s"},
	}
	report := Report{Finalized: []Interval{{0, 1}, {1, 2}}, Probes: 3, Pages: 1, Degenerate: 1}

	var buf bytes.Buffer
	FormatTable(results, report, &buf)
	out := buf.String()
	assert.Contains(t, out, "http://farm2.static.flickr.com/3/1_s.jpg")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "1 result(s) from 2 interval(s); 3 probe(s), 1 page(s)")
	assert.Contains(t, out, "could not be split")
}

func TestFormatTableTruncatesOnRunes(t *testing.T) {
	title := strings.Repeat("桜の写真", 20)
	results := []types.Photo{{ID: "1", Owner: "写真家の名前がとても長い人", Title: title, Farm: 1, Server: "2", Secret: "s"}}

	var buf bytes.Buffer
	FormatTable(results, Report{}, &buf)
	assert.True(t, utf8.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), string([]rune(title)[:37])+"...")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, Report{}, &buf)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestFormatJSONIncludesURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON([]types.Photo{{ID: "7", Farm: 1, Server: "2", Secret: "x"}}, &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0]["id"])
	assert.Equal(t, "http://farm1.static.flickr.com/2/7_x.jpg", got[0]["url"])
	assert.Equal(t, "image/jpg", got[0]["format"])
}
