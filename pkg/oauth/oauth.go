// Package oauth provides OAuth 2.0 utilities for ytcomments.
//
// This package enables ytcomments to:
// - Read an installed-app client secret downloaded from the Google console
// - Run the browser consent flow with a loopback callback
// - Cache the token on disk and save refreshed tokens back
package oauth

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

var (
	ErrTokenNotFound       = errors.New("token not found")
	ErrInvalidState        = errors.New("invalid state parameter")
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// YouTubeScopes are requested together so that consent is asked only once.
var YouTubeScopes = []string{
	youtube.YoutubeReadonlyScope,
	youtube.YoutubeForceSslScope,
}

type Config struct {
	ClientID     string
	ClientSecret string // #nosec G117 - OAuth client config, not an exposed secret
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
}

func (c Config) Validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RedirectURL == "":
		return errors.New("redirect URL is required")
	case len(c.Scopes) == 0:
		return errors.New("at least one scope is required")
	}
	return nil
}

// LoadClientSecret reads a client secret JSON file ("installed" or "web").
// The redirect URL is left to the caller since it depends on the callback port.
func LoadClientSecret(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the user
	if err != nil {
		return Config{}, fmt.Errorf("failed to read client secret: %w", err)
	}

	oc, err := google.ConfigFromJSON(data, YouTubeScopes...)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse client secret %s: %w", path, err)
	}

	return Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		AuthURL:      oc.Endpoint.AuthURL,
		TokenURL:     oc.Endpoint.TokenURL,
		Scopes:       oc.Scopes,
	}, nil
}

func (c Config) toOAuth2() *oauth2.Config {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = google.Endpoint.AuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}
