// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the media-miner CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-miner/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the media-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "media-miner",
	Short: "Harvest media search results beyond a service's per-query cap",
	Long: `media-miner retrieves as many results as possible for a text query from
the Flickr photo search API, which never returns more than 4000 matches for
a single query. It splits the upload-date range into windows small enough to
stay under that cap and pages through each window in turn.

Results can be printed, saved to a harvest file, recorded in a local SQLite
store, exported, and downloaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./media-miner.yaml or ~/.config/media-miner/media-miner.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files (flickr-api-key, flickr-api-secret)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("media-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir := userConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetEnvPrefix("MEDIA_MINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// userConfigDir returns ~/.config/media-miner, or "" if the home directory
// is unknown.
func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "media-miner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
