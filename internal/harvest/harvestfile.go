// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/media-miner/pkg/types"
)

// HarvestFile is the on-disk record of a harvest: the query, how the search
// universe was partitioned, and the results. It can be reloaded later, for
// example to download the images, without querying the service again.
type HarvestFile struct {
	Query   string         `yaml:"query"`
	Limit   int            `yaml:"limit"`
	PerPage int            `yaml:"per_page,omitempty"`
	RunID   string         `yaml:"run_id,omitempty"`
	Report  Report         `yaml:"report"`
	Results []HarvestEntry `yaml:"results"`
	Summary HarvestSummary `yaml:"summary"`
}

// HarvestEntry is a Photo together with its derived image locator.
type HarvestEntry struct {
	types.Photo `yaml:",inline"`
	URL         string `yaml:"url"`
	Format      string `yaml:"format"`
}

// HarvestSummary stores result statistics and a timestamp.
type HarvestSummary struct {
	Total     int       `yaml:"total"`
	Requested int       `yaml:"requested"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewHarvestFile assembles a HarvestFile from a completed harvest.
func NewHarvestFile(query string, limit, perPage int, report Report, results []types.Photo) HarvestFile {
	hf := HarvestFile{
		Query:   query,
		Limit:   limit,
		PerPage: perPage,
		Report:  report,
		Summary: HarvestSummary{
			Total:     len(results),
			Requested: limit,
			Timestamp: time.Now().UTC(),
		},
	}
	for _, p := range results {
		hf.Results = append(hf.Results, HarvestEntry{Photo: p, URL: p.URL(), Format: p.Format()})
	}
	return hf
}

// Photos returns the stored results without their derived fields.
func (hf *HarvestFile) Photos() []types.Photo {
	photos := make([]types.Photo, len(hf.Results))
	for i, e := range hf.Results {
		photos[i] = e.Photo
	}
	return photos
}

// WriteHarvestFile saves hf to path as YAML.
func WriteHarvestFile(path string, hf HarvestFile) error {
	data, err := yaml.Marshal(&hf)
	if err != nil {
		return fmt.Errorf("marshaling harvest file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadHarvestFile loads a previously saved harvest file from disk.
func ReadHarvestFile(path string) (*HarvestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading harvest file: %w", err)
	}
	var hf HarvestFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("parsing harvest file: %w", err)
	}
	return &hf, nil
}
