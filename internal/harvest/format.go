// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/media-miner/pkg/types"
)

// FormatTable writes results as a human-readable table to w, followed by a
// one-line summary of the queries issued.
func FormatTable(results []types.Photo, report Report, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "%-5s  %-12s  %-40s  %-14s  %s\n", "Rank", "ID", "Title", "Owner", "URL")
		fmt.Fprintln(w, strings.Repeat("-", 130))
		for i, p := range results {
			fmt.Fprintf(w, "%-5d  %-12s  %-40s  %-14s  %s\n",
				i+1, p.ID, truncate(p.Title, 40), truncate(p.Owner, 14), p.URL())
		}
	}

	fmt.Fprintf(w, "\n%d result(s) from %d interval(s); %d probe(s), %d page(s)",
		len(results), len(report.Finalized), report.Probes, report.Pages)
	if report.Degenerate > 0 {
		fmt.Fprintf(w, "; %d interval(s) over the cap could not be split", report.Degenerate)
	}
	fmt.Fprintln(w)
}

// jsonResult is a Photo with its derived locator, as emitted by FormatJSON.
type jsonResult struct {
	types.Photo
	URL    string `json:"url"`
	Format string `json:"format"`
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.Photo, w io.Writer) error {
	out := make([]jsonResult, len(results))
	for i, p := range results {
		out[i] = jsonResult{Photo: p, URL: p.URL(), Format: p.Format()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
