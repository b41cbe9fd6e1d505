// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-miner/internal/harvest"
	"github.com/pdiddy/media-miner/internal/secrets"
	"github.com/pdiddy/media-miner/pkg/types"
)

const (
	defaultUserAgent       = "media-miner/0.1"
	defaultSearchTimeout   = 30 * time.Second
	defaultDownloadTimeout = 60 * time.Second
	dateFmt                = "2006-01-02"
)

func setDefaults() {
	viper.SetDefault("flickr.timeout", defaultSearchTimeout)
	viper.SetDefault("flickr.user_agent", defaultUserAgent)
	viper.SetDefault("flickr.per_query_cap", types.DefaultPerQueryCap)
	viper.SetDefault("flickr.max_page_size", types.DefaultMaxPageSize)
	viper.SetDefault("flickr.earliest", types.DefaultEarliest.Format(dateFmt))

	viper.SetDefault("auth.mode", string(types.AuthKey))
	viper.SetDefault("auth.perms", "read")
	if dir := userConfigDir(); dir != "" {
		viper.SetDefault("auth.token_file", filepath.Join(dir, "oauth.yaml"))
	}

	viper.SetDefault("harvest.limit", harvest.DefaultLimit)
	viper.SetDefault("harvest.per_page", 0)

	viper.SetDefault("store.path", filepath.Join("data", "harvest.db"))

	viper.SetDefault("download.dir", filepath.Join("data", "images"))
	viper.SetDefault("download.concurrency", 4)
	viper.SetDefault("download.timeout", defaultDownloadTimeout)

	viper.SetDefault("secrets_dir", ".secrets/")
}

// loadConfig assembles the typed configuration from viper (config file,
// MEDIA_MINER_* environment, bound flags) and the secrets directory.
func loadConfig() (types.MinerConfig, error) {
	earliest, err := time.Parse(dateFmt, viper.GetString("flickr.earliest"))
	if err != nil {
		return types.MinerConfig{}, fmt.Errorf("invalid flickr.earliest %q: %w", viper.GetString("flickr.earliest"), err)
	}
	userAgent := viper.GetString("flickr.user_agent")

	cfg := types.MinerConfig{
		Flickr: types.FlickrConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("flickr.timeout"),
				UserAgent: userAgent,
			},
			ServiceLimits: types.ServiceLimits{
				PerQueryCap: viper.GetInt("flickr.per_query_cap"),
				MaxPageSize: viper.GetInt("flickr.max_page_size"),
				Earliest:    earliest,
			},
			APIKey:    loadedSecrets.Or(secrets.FlickrAPIKey, viper.GetString("flickr.api_key")),
			APISecret: loadedSecrets.Or(secrets.FlickrAPISecret, viper.GetString("flickr.api_secret")),
			Extras:    viper.GetString("flickr.extras"),
		},
		Auth: types.AuthConfig{
			Mode:      types.AuthMode(viper.GetString("auth.mode")),
			TokenFile: viper.GetString("auth.token_file"),
			Perms:     viper.GetString("auth.perms"),
		},
		Harvest: types.HarvestConfig{
			Limit:   viper.GetInt("harvest.limit"),
			PerPage: viper.GetInt("harvest.per_page"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Download: types.DownloadConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("download.timeout"),
				UserAgent: userAgent,
			},
			Dir:         viper.GetString("download.dir"),
			Concurrency: viper.GetInt("download.concurrency"),
		},
	}
	return cfg, nil
}

// progress returns the writer for progress lines: stderr, or io.Discard
// with --quiet.
func progress(cmd *cobra.Command) io.Writer {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return io.Discard
	}
	return os.Stderr
}
