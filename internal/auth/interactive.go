// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const defaultPerms = "read"

// Interactive runs the OAuth 1.0a authorization flow with a human in the
// loop and caches the resulting token.
type Interactive struct {
	Config    *oauth1.Config
	TokenFile string

	// Perms is the permission level to request: read, write or delete.
	Perms string

	Timeout time.Duration

	// In supplies the pasted callback URL or verifier; Out receives prompts.
	In  io.Reader
	Out io.Writer
}

// Session authorizes and returns a signing client.
func (i *Interactive) Session(ctx context.Context) (*http.Client, error) {
	tok, err := i.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	return signedClient(ctx, i.Config, tok, i.Timeout), nil
}

// Authorize obtains a request token, asks the user to approve it, exchanges
// the verifier for an access token and saves it to TokenFile.
func (i *Interactive) Authorize(ctx context.Context) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i.In == nil || i.Out == nil {
		return nil, errors.New("interactive authorization needs a terminal")
	}

	requestToken, requestSecret, err := i.Config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("obtaining request token: %w", err)
	}
	authURL, err := i.Config.AuthorizationURL(requestToken)
	if err != nil {
		return nil, fmt.Errorf("building authorization URL: %w", err)
	}
	perms := i.Perms
	if perms == "" {
		perms = defaultPerms
	}
	q := authURL.Query()
	q.Set("perms", perms)
	authURL.RawQuery = q.Encode()

	fmt.Fprintln(i.Out, "Flickr needs user authorization")
	fmt.Fprintln(i.Out, "-------------------------------")
	fmt.Fprintln(i.Out, "Visit this URL and approve access:")
	fmt.Fprintln(i.Out, authURL.String())
	fmt.Fprint(i.Out, "Paste the full callback URL or the verifier code: ")

	line, err := bufio.NewReader(i.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("reading authorization response: %w", err)
	}
	verifier, err := parseVerifier(strings.TrimSpace(line), requestToken)
	if err != nil {
		return nil, err
	}

	accessToken, accessSecret, err := i.Config.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return nil, fmt.Errorf("exchanging verifier for access token: %w", err)
	}

	tok := &Token{Token: accessToken, Secret: accessSecret, Obtained: time.Now().UTC()}
	if i.TokenFile != "" {
		if err := SaveToken(i.TokenFile, tok); err != nil {
			return nil, err
		}
		fmt.Fprintf(i.Out, "Token saved to %s\n", i.TokenFile)
	}
	return tok, nil
}

// parseVerifier extracts the OAuth verifier from a pasted callback URL, or
// accepts the input as a bare verifier code.
func parseVerifier(input, requestToken string) (string, error) {
	if input == "" {
		return "", errors.New("no authorization response provided")
	}
	if !strings.Contains(input, "oauth_verifier=") {
		return input, nil
	}

	req, err := http.NewRequest(http.MethodGet, input, nil)
	if err != nil {
		return "", fmt.Errorf("parsing callback URL: %w", err)
	}
	token, verifier, err := oauth1.ParseAuthorizationCallback(req)
	if err != nil {
		return "", fmt.Errorf("parsing callback URL: %w", err)
	}
	if token != requestToken {
		return "", fmt.Errorf("callback is for request token %q, expected %q", token, requestToken)
	}
	return verifier, nil
}
