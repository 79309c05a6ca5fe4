package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
)

const defaultCallbackTimeout = 5 * time.Minute

// persistingSource saves every new token its base source hands out.
type persistingSource struct {
	base  oauth2.TokenSource
	cache *TokenCache
	log   *logger.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.cache.Save(tok); err != nil {
			s.log.Warn().Err(err).Str("path", s.cache.Path()).Msg("failed to save refreshed token")
		} else {
			s.log.Debug().Time("expiry", tok.Expiry).Msg("refreshed token saved")
		}
	}
	return tok, nil
}

// PersistingTokenSource reuses initial until it expires, then refreshes it
// through base and writes the new token to cache.
func PersistingTokenSource(base oauth2.TokenSource, cache *TokenCache, initial *oauth2.Token) oauth2.TokenSource {
	s := &persistingSource{base: base, cache: cache, log: logger.Named("oauth")}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return oauth2.ReuseTokenSource(initial, s)
}

// Authenticator yields a token source from the cache, running the browser
// consent flow when no token is cached yet.
type Authenticator struct {
	Config      Config
	Cache       *TokenCache
	Port        int
	OpenBrowser func(url string) error
	Out         io.Writer
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg := a.Config
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = NewCallbackServer(a.Port).RedirectURL()
	}

	tok, err := a.Cache.Load()
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenNotFound):
		tok, cfg, err = a.login(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := a.Cache.Save(tok); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	flow := NewFlow(cfg, a.flowOptions()...)
	return PersistingTokenSource(flow.TokenSource(ctx, tok), a.Cache, tok), nil
}

func (a *Authenticator) login(ctx context.Context, cfg Config) (*oauth2.Token, Config, error) {
	srv := NewCallbackServer(a.Port)
	if err := srv.Listen(); err != nil {
		return nil, cfg, err
	}
	cfg.RedirectURL = srv.RedirectURL()
	if err := cfg.Validate(); err != nil {
		return nil, cfg, fmt.Errorf("invalid OAuth config: %w", err)
	}

	flow := NewFlow(cfg, a.flowOptions()...)
	authURL, state := flow.GenerateAuthURL()

	if a.Out != nil {
		_, _ = fmt.Fprintf(a.Out, "Open this URL in your browser to authorize ytcomments:\n\n  %s\n\n", authURL)
	}
	if a.OpenBrowser != nil {
		if err := a.OpenBrowser(authURL); err != nil && a.Out != nil {
			_, _ = fmt.Fprintf(a.Out, "Could not open a browser (%v); open the URL above manually.\n", err)
		}
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}
	code, err := srv.WaitForCallback(ctx, state, timeout)
	if err != nil {
		return nil, cfg, err
	}

	tok, err := flow.ExchangeCode(ctx, code)
	if err != nil {
		return nil, cfg, err
	}
	return tok, cfg, nil
}

func (a *Authenticator) flowOptions() []FlowOption {
	if a.HTTPClient == nil {
		return nil
	}
	return []FlowOption{WithHTTPClient(a.HTTPClient)}
}
