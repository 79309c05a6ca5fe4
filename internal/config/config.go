// Package config loads ytcomments settings from the environment.
//
// Every setting is read from a YTCOMMENTS_* variable. A .env file in the
// working directory is loaded first; variables already set in the process
// environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "YTCOMMENTS_"

// DefaultAPIURL is the YouTube Data API host.
const DefaultAPIURL = "https://www.googleapis.com"

// Settings holds the tunables of a run.
type Settings struct {
	APIURL            string        `validate:"required,url"`
	RequestsPerSecond float64       `validate:"gt=0,lte=100"`
	Workers           int           `validate:"min=1,max=32"`
	MaxRetries        int           `validate:"min=0,max=10"`
	RetryWait         time.Duration `validate:"gt=0"`
	HTTPTimeout       time.Duration `validate:"gt=0"`
	OAuthPort         int           `validate:"min=1,max=65535"`

	// AccessToken bypasses the OAuth flow with a static bearer token.
	AccessToken string

	LogLevel  string `validate:"omitempty,oneof=trace debug info warn warning error off disabled"`
	LogFormat string `validate:"omitempty,oneof=console json"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		APIURL:            DefaultAPIURL,
		RequestsPerSecond: 10,
		Workers:           1,
		MaxRetries:        3,
		RetryWait:         500 * time.Millisecond,
		HTTPTimeout:       30 * time.Second,
		OAuthPort:         8080,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// Load reads .env (if present) and the environment on top of Defaults.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(Env(Prefix))
}

// FromEnv builds settings from an environment view without touching .env.
func FromEnv(e Conf) (Settings, error) {
	s := Defaults()
	s.APIURL = e.String("API_URL", s.APIURL)
	s.RequestsPerSecond = e.Float("REQUESTS_PER_SECOND", s.RequestsPerSecond)
	s.Workers = e.Int("WORKERS", s.Workers)
	s.MaxRetries = e.Int("MAX_RETRIES", s.MaxRetries)
	s.RetryWait = e.Duration("RETRY_WAIT", s.RetryWait)
	s.HTTPTimeout = e.Duration("HTTP_TIMEOUT", s.HTTPTimeout)
	s.OAuthPort = e.Int("OAUTH_PORT", s.OAuthPort)
	s.AccessToken = e.String("ACCESS_TOKEN", "")
	s.LogLevel = strings.ToLower(e.String("LOG_LEVEL", s.LogLevel))
	s.LogFormat = strings.ToLower(e.String("LOG_FORMAT", s.LogFormat))

	if err := e.Err(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field in a readable form.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid setting %s: %v fails %q", fe.Field(), fe.Value(), fe.Tag())
	}
	return err
}

// Conf is a prefixed view over environment variables. Parse failures are
// collected and reported by Err.
type Conf struct {
	prefix string
	lookup func(string) (string, bool)
	errs   *[]error
}

// Env returns a view over the process environment.
func Env(prefix string) Conf {
	return Conf{prefix: prefix, lookup: os.LookupEnv, errs: new([]error)}
}

// Map returns a view over a fixed set of variables (useful in tests).
func Map(prefix string, vars map[string]string) Conf {
	return Conf{
		prefix: prefix,
		lookup: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
		errs: new([]error),
	}
}

func (c Conf) get(key string) (string, bool) {
	v, ok := c.lookup(c.prefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (c Conf) fail(key, value, want string) {
	*c.errs = append(*c.errs, fmt.Errorf("%s%s=%q is not a valid %s", c.prefix, key, value, want))
}

// String returns the value or def if unset.
func (c Conf) String(key, def string) string {
	if v, ok := c.get(key); ok {
		return v
	}
	return def
}

// Int returns the value or def if unset.
func (c Conf) Int(key string, def int) int {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.fail(key, v, "integer")
		return def
	}
	return n
}

// Float returns the value or def if unset.
func (c Conf) Float(key string, def float64) float64 {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.fail(key, v, "number")
		return def
	}
	return f
}

// Duration returns the value or def if unset.
func (c Conf) Duration(key string, def time.Duration) time.Duration {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.fail(key, v, "duration (e.g. 250ms, 2s)")
		return def
	}
	return d
}

// Err returns every parse failure seen so far.
func (c Conf) Err() error {
	return errors.Join(*c.errs...)
}
