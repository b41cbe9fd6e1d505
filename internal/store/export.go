// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.yaml.in/yaml/v3"
)

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	// FormatJSONL writes one JSON object per line.
	FormatJSONL ExportFormat = "jsonl"
	// FormatYAML writes a single YAML document.
	FormatYAML ExportFormat = "yaml"
)

// ExportRecord is one exported photo with its derived locator.
type ExportRecord struct {
	Rank   int    `json:"rank" yaml:"rank"`
	ID     string `json:"id" yaml:"id"`
	Owner  string `json:"owner" yaml:"owner"`
	Title  string `json:"title" yaml:"title"`
	URL    string `json:"url" yaml:"url"`
	Format string `json:"format" yaml:"format"`
	Public bool   `json:"public" yaml:"public"`
}

// yamlExport is the YAML document layout.
type yamlExport struct {
	Run    Run            `yaml:"run"`
	Photos []ExportRecord `yaml:"photos"`
}

// Export writes the photos of runID to w. It returns the number of records
// written.
func (s *Store) Export(ctx context.Context, runID string, w io.Writer, format ExportFormat) (int, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return 0, err
	}
	photos, err := s.RunPhotos(ctx, run.ID)
	if err != nil {
		return 0, err
	}

	records := make([]ExportRecord, len(photos))
	for i, p := range photos {
		records[i] = ExportRecord{
			Rank:   i + 1,
			ID:     p.ID,
			Owner:  p.Owner,
			Title:  p.Title,
			URL:    p.URL(),
			Format: p.Format(),
			Public: p.IsPublic,
		}
	}

	switch format {
	case FormatJSONL, "":
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return 0, fmt.Errorf("encoding record: %w", err)
			}
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(yamlExport{Run: run, Photos: records}); err != nil {
			return 0, fmt.Errorf("encoding export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return 0, fmt.Errorf("encoding export: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}
	return len(records), nil
}

// ExportFile writes the photos of runID to path. A path ending in ".zst" is
// zstd-compressed.
func (s *Store) ExportFile(ctx context.Context, runID, path string, format ExportFormat) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return s.Export(ctx, runID, f, format)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return 0, fmt.Errorf("creating zstd writer: %w", err)
	}
	n, err = s.Export(ctx, runID, zw, format)
	if cerr := zw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("flushing zstd stream: %w", cerr)
	}
	return n, err
}
