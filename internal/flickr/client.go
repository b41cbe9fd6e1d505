// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flickr executes photo searches against the Flickr REST API. Client
// implements harvest.Executor: one call issues one flickr.photos.search
// request bounded by upload date and returns the parsed page.
package flickr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/media-miner/internal/harvest"
	"github.com/pdiddy/media-miner/internal/httputil"
	"github.com/pdiddy/media-miner/pkg/types"
)

// flickrRESTBase is the Flickr REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var flickrRESTBase = "https://api.flickr.com/services/rest"

const (
	searchMethod = "flickr.photos.search"
	jsonpPrefix  = "jsonFlickrApi("

	// maxResponseBytes bounds a single search response; a full 500-photo
	// page with extras is well under this.
	maxResponseBytes = 16 << 20
)

// Client issues flickr.photos.search requests.
type Client struct {
	// HTTP is the session used for requests. An OAuth-signing client from
	// internal/auth works as well as a plain one.
	HTTP *http.Client

	Config types.FlickrConfig

	// Log receives retry notices. Nil discards.
	Log io.Writer
}

// New returns a Client using httpClient, or a client with cfg.Timeout if
// httpClient is nil.
func New(httpClient *http.Client, cfg types.FlickrConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{HTTP: httpClient, Config: cfg}
}

// Execute runs one search request. Every failure, including transport
// errors, is returned as a *harvest.SearchExecutionError.
func (c *Client) Execute(ctx context.Context, sr harvest.SearchRequest) (harvest.SearchBatch, error) {
	params := buildSearchParams(c.Config.APIKey, c.Config.Extras, sr)
	reqURL := flickrRESTBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return harvest.SearchBatch{}, &harvest.SearchExecutionError{Err: fmt.Errorf("creating request: %w", err)}
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	retrier := &httputil.Retrier{Client: c.HTTP, Log: c.Log}
	resp, err := retrier.Do(ctx, req)
	if err != nil {
		return harvest.SearchBatch{}, &harvest.SearchExecutionError{Err: fmt.Errorf("Flickr API request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return harvest.SearchBatch{}, &harvest.SearchExecutionError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading Flickr response: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return harvest.SearchBatch{}, &harvest.SearchExecutionError{
			StatusCode: resp.StatusCode,
			RawBody:    string(body),
			Err:        fmt.Errorf("Flickr API returned HTTP %d", resp.StatusCode),
		}
	}

	batch, err := parseSearchResponse(body)
	if err != nil {
		return harvest.SearchBatch{}, &harvest.SearchExecutionError{
			StatusCode: resp.StatusCode,
			RawBody:    string(body),
			Err:        err,
		}
	}
	return batch, nil
}

// buildSearchParams encodes a search request as flickr.photos.search query
// parameters. Results are sorted by relevance within the upload-date window.
func buildSearchParams(apiKey, extras string, sr harvest.SearchRequest) url.Values {
	params := url.Values{
		"method":   {searchMethod},
		"text":     {sr.Text},
		"format":   {"json"},
		"page":     {strconv.Itoa(sr.Page)},
		"per_page": {strconv.Itoa(sr.PerPage)},
		"sort":     {"relevance"},
	}
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}
	if extras != "" {
		params.Set("extras", extras)
	}
	if sr.Interval != nil {
		params.Set("min_upload_date", strconv.FormatInt(sr.Interval.Start, 10))
		params.Set("max_upload_date", strconv.FormatInt(sr.Interval.End, 10))
	}
	return params
}

// parseSearchResponse decodes a search response body, with or without the
// jsonFlickrApi(...) JSONP wrapper.
func parseSearchResponse(body []byte) (harvest.SearchBatch, error) {
	payload := stripJSONP(body)

	var sr searchResponse
	if err := json.Unmarshal(payload, &sr); err != nil {
		return harvest.SearchBatch{}, fmt.Errorf("parsing Flickr response: %w", err)
	}
	if sr.Stat != "ok" {
		return harvest.SearchBatch{}, fmt.Errorf("Flickr API error %d: %s", sr.Code, sr.Message)
	}
	if sr.Photos == nil {
		return harvest.SearchBatch{}, fmt.Errorf("%w: response has no photos element", harvest.ErrMalformedBatch)
	}

	page := sr.Photos
	batch := harvest.SearchBatch{Total: int(page.Total)}
	if int(page.Page) < int(page.Pages) {
		batch.NextPage = int(page.Page) + 1
	}
	for _, p := range page.Photo {
		batch.Items = append(batch.Items, types.Photo{
			ID:       p.ID,
			Owner:    p.Owner,
			Secret:   p.Secret,
			Server:   p.Server,
			Farm:     int(p.Farm),
			Title:    p.Title,
			IsPublic: p.IsPublic == 1,
		})
	}
	return batch, nil
}

func stripJSONP(body []byte) []byte {
	b := bytes.TrimSpace(body)
	if bytes.HasPrefix(b, []byte(jsonpPrefix)) && bytes.HasSuffix(b, []byte(")")) {
		return b[len(jsonpPrefix) : len(b)-1]
	}
	return b
}

// Flickr API JSON structures.
type searchResponse struct {
	Stat    string     `json:"stat"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Photos  *photoPage `json:"photos"`
}

type photoPage struct {
	Page    flexInt       `json:"page"`
	Pages   flexInt       `json:"pages"`
	PerPage flexInt       `json:"perpage"`
	Total   flexInt       `json:"total"`
	Photo   []flickrPhoto `json:"photo"`
}

type flickrPhoto struct {
	ID       string  `json:"id"`
	Owner    string  `json:"owner"`
	Secret   string  `json:"secret"`
	Server   string  `json:"server"`
	Farm     flexInt `json:"farm"`
	Title    string  `json:"title"`
	IsPublic flexInt `json:"ispublic"`
}

// flexInt accepts both JSON numbers and numeric strings; Flickr sends
// "total" as a string in some API versions and a number in others.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*f = flexInt(n)
	return nil
}
