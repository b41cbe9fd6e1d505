package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "media-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ServiceLimits describes the constraints the remote search service imposes.
// They are configuration, not constants, so a different deployment of the
// service can be mined without code changes.
type ServiceLimits struct {
	// PerQueryCap is the ceiling on total reachable results for any one
	// query regardless of pagination depth (4000 for Flickr).
	PerQueryCap int `json:"per_query_cap" yaml:"per_query_cap"`

	// MaxPageSize is the largest page the service returns (500 for Flickr).
	MaxPageSize int `json:"max_page_size" yaml:"max_page_size"`

	// Earliest is the lower bound of the searchable universe.
	Earliest time.Time `json:"earliest" yaml:"earliest"`
}

// Flickr service defaults.
const (
	DefaultPerQueryCap = 4000
	DefaultMaxPageSize = 500
)

// DefaultEarliest is the earliest upload date Flickr indexes.
var DefaultEarliest = time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultServiceLimits returns the Flickr limits.
func DefaultServiceLimits() ServiceLimits {
	return ServiceLimits{
		PerQueryCap: DefaultPerQueryCap,
		MaxPageSize: DefaultMaxPageSize,
		Earliest:    DefaultEarliest,
	}
}

// FlickrConfig holds settings for the Flickr search executor.
type FlickrConfig struct {
	HTTPConfig    `yaml:",inline"`
	ServiceLimits `yaml:",inline"`

	// APIKey and APISecret identify the registered application.
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`

	// Extras is the comma-separated list of extra photo fields to request.
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// AuthMode selects how an authenticated session is obtained.
type AuthMode string

const (
	// AuthKey uses only the API key; sufficient for public search.
	AuthKey AuthMode = "key"
	// AuthOAuth loads a cached OAuth token, falling back to the interactive flow.
	AuthOAuth AuthMode = "oauth"
)

// AuthConfig holds settings for session establishment.
type AuthConfig struct {
	// Mode is "key" or "oauth".
	Mode AuthMode `json:"mode" yaml:"mode"`

	// TokenFile is where the OAuth access token is cached.
	TokenFile string `json:"token_file" yaml:"token_file"`

	// Perms is the permission level requested during authorization
	// (read, write or delete).
	Perms string `json:"perms" yaml:"perms"`
}

// HarvestConfig holds settings for the harvesting stage.
type HarvestConfig struct {
	// Limit is the default number of results to harvest (default 20).
	Limit int `json:"limit" yaml:"limit"`

	// PerPage is the preferred page size; zero means use Limit.
	PerPage int `json:"per_page" yaml:"per_page"`
}

// StoreConfig holds settings for the harvested-results database.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

// DownloadConfig holds settings for the image download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory images are written to.
	Dir string `json:"dir" yaml:"dir"`

	// Concurrency bounds parallel downloads (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// MinerConfig groups all stage configurations.
type MinerConfig struct {
	Flickr   FlickrConfig   `json:"flickr" yaml:"flickr"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	Harvest  HarvestConfig  `json:"harvest" yaml:"harvest"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Download DownloadConfig `json:"download" yaml:"download"`
}
