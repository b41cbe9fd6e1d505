// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dghubble/oauth1"
	"go.yaml.in/yaml/v3"
)

// ErrNoCachedToken is returned when the token file does not exist.
var ErrNoCachedToken = errors.New("no cached OAuth token")

// Token is an OAuth 1.0a access token as cached on disk.
type Token struct {
	Token    string    `yaml:"token"`
	Secret   string    `yaml:"secret"`
	Obtained time.Time `yaml:"obtained"`
}

// LoadToken reads a cached token from path.
func LoadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoCachedToken, path)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok Token
	if err := yaml.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", path, err)
	}
	if tok.Token == "" || tok.Secret == "" {
		return nil, fmt.Errorf("token file %s is incomplete", path)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := yaml.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Cached signs requests with the token stored in TokenFile.
type Cached struct {
	Config    *oauth1.Config
	TokenFile string
	Timeout   time.Duration
}

// Session loads the cached token. It fails with ErrNoCachedToken when no
// token has been saved yet.
func (c *Cached) Session(ctx context.Context) (*http.Client, error) {
	tok, err := LoadToken(c.TokenFile)
	if err != nil {
		return nil, err
	}
	return signedClient(ctx, c.Config, tok, c.Timeout), nil
}
