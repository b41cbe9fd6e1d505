// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package auth establishes the HTTP session used to query Flickr.
//
// Public photo search needs only an API key, which the search client sends
// as a parameter; KeyOnly covers that case. Private or restricted results
// need an OAuth 1.0a access token: Cached signs requests with a token saved
// on disk, and Interactive obtains one by sending the user to Flickr's
// authorization page and reading back the callback they paste. FromConfig
// picks the provider; in oauth mode it tries the cache before prompting.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/pdiddy/media-miner/pkg/types"
)

// Endpoint is Flickr's OAuth 1.0a endpoint. Declared as a var so tests can
// substitute an httptest server.
var Endpoint = oauth1.Endpoint{
	RequestTokenURL: "https://www.flickr.com/services/oauth/request_token",
	AuthorizeURL:    "https://www.flickr.com/services/oauth/authorize",
	AccessTokenURL:  "https://www.flickr.com/services/oauth/access_token",
}

// Provider supplies a ready-to-use HTTP client.
type Provider interface {
	Session(ctx context.Context) (*http.Client, error)
}

// KeyOnly returns an unsigned client. Requests authenticate with the
// api_key parameter alone.
type KeyOnly struct {
	Timeout time.Duration
}

// Session returns a plain client with the configured timeout.
func (k KeyOnly) Session(ctx context.Context) (*http.Client, error) {
	return &http.Client{Timeout: k.Timeout}, nil
}

// Chain returns the session of the first provider that succeeds.
type Chain []Provider

// Session tries each provider in order.
func (c Chain) Session(ctx context.Context) (*http.Client, error) {
	var errs []error
	for _, p := range c {
		client, err := p.Session(ctx)
		if err == nil {
			return client, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no session providers configured")
	}
	return nil, fmt.Errorf("establishing session: %w", errors.Join(errs...))
}

// OAuthConfig returns the OAuth 1.0a consumer configuration for the
// application identified by cfg. Flickr supports the out-of-band callback,
// which shows the user a verifier code instead of redirecting.
func OAuthConfig(cfg types.FlickrConfig) *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    cfg.APIKey,
		ConsumerSecret: cfg.APISecret,
		CallbackURL:    "oob",
		Endpoint:       Endpoint,
	}
}

// FromConfig selects a Provider for ac.Mode. Interactive prompts are written
// to out and answers read from in.
func FromConfig(fc types.FlickrConfig, ac types.AuthConfig, in io.Reader, out io.Writer) (Provider, error) {
	switch ac.Mode {
	case "", types.AuthKey:
		if fc.APIKey == "" {
			return nil, errors.New("flickr API key is not configured (set flickr.api_key or .secrets/flickr-api-key)")
		}
		return KeyOnly{Timeout: fc.Timeout}, nil
	case types.AuthOAuth:
		if fc.APIKey == "" || fc.APISecret == "" {
			return nil, errors.New("oauth mode needs both flickr.api_key and flickr.api_secret")
		}
		if ac.TokenFile == "" {
			return nil, errors.New("oauth mode needs auth.token_file")
		}
		oc := OAuthConfig(fc)
		return Chain{
			&Cached{Config: oc, TokenFile: ac.TokenFile, Timeout: fc.Timeout},
			&Interactive{Config: oc, TokenFile: ac.TokenFile, Perms: ac.Perms, Timeout: fc.Timeout, In: in, Out: out},
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q (want %q or %q)", ac.Mode, types.AuthKey, types.AuthOAuth)
	}
}

// signedClient returns a client that signs every request with tok.
func signedClient(ctx context.Context, cfg *oauth1.Config, tok *Token, timeout time.Duration) *http.Client {
	client := cfg.Client(ctx, oauth1.NewToken(tok.Token, tok.Secret))
	client.Timeout = timeout
	return client
}
