// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/media-miner/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the cached Flickr OAuth token",
	Long: `Auth obtains and inspects the OAuth token used when auth.mode is "oauth".
Public searches only need an API key and do not require a token.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize media-miner with Flickr and cache the token",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a cached token is present",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Flickr.APIKey == "" || cfg.Flickr.APISecret == "" {
		return errors.New("login needs both flickr.api_key and flickr.api_secret")
	}
	if cfg.Auth.TokenFile == "" {
		return errors.New("auth.token_file is not configured")
	}

	i := &auth.Interactive{
		Config:    auth.OAuthConfig(cfg.Flickr),
		TokenFile: cfg.Auth.TokenFile,
		Perms:     cfg.Auth.Perms,
		Timeout:   cfg.Flickr.Timeout,
		In:        os.Stdin,
		Out:       os.Stderr,
	}
	_, err = i.Authorize(context.Background())
	return err
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tok, err := auth.LoadToken(cfg.Auth.TokenFile)
	if errors.Is(err, auth.ErrNoCachedToken) {
		fmt.Printf("No cached token at %s (run \"media-miner auth login\").\n", cfg.Auth.TokenFile)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Cached token at %s, obtained %s.\n", cfg.Auth.TokenFile, tok.Obtained.Format("2006-01-02 15:04 MST"))
	fmt.Printf("Auth mode: %s\n", cfg.Auth.Mode)
	return nil
}
