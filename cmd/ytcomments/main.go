// Package main provides the ytcomments CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/gauthierbraillon/ytcomments/internal/aggregator"
	"github.com/gauthierbraillon/ytcomments/internal/config"
	"github.com/gauthierbraillon/ytcomments/internal/display"
	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/output"
	"github.com/gauthierbraillon/ytcomments/internal/quota"
	"github.com/gauthierbraillon/ytcomments/internal/threads"
	"github.com/gauthierbraillon/ytcomments/internal/uploads"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
	"github.com/gauthierbraillon/ytcomments/pkg/browser"
	"github.com/gauthierbraillon/ytcomments/pkg/oauth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprint(os.Stderr, display.NewSummaryFormatter(!color.NoColor).FormatFatal(err))
		os.Exit(1)
	}
}

type options struct {
	tokenCacheName   string
	clientSecretName string
	outputName       string
	workers          int
	maxRetries       int
	port             int
	writePartial     bool
}

// newRootCmd creates the root command for ytcomments CLI.
func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "ytcomments <CHANNEL_HANDLE>",
		Short: "Download every comment on a YouTube channel's videos",
		Long: "ytcomments walks all uploads of a YouTube channel and writes their comment\n" +
			"threads, replies included, to a JSON file.\n\n" +
			"CHANNEL_HANDLE is a handle such as @example or a channel id (UC...).",
		Example:       "  ytcomments @example --output-name example.json",
		Version:       currentVersion(),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	rootCmd.SetVersionTemplate("ytcomments version {{.Version}}\n")

	f := rootCmd.Flags()
	f.StringVar(&opts.tokenCacheName, "token-cache-name", "tokencache.json", "File holding the cached OAuth token")
	f.StringVar(&opts.clientSecretName, "client-secret-name", "client_secret.json", "OAuth client secret downloaded from the Google Cloud console")
	f.StringVarP(&opts.outputName, "output-name", "o", "comments.json", "File the comments are written to")
	f.IntVarP(&opts.workers, "workers", "w", 1, "Number of videos processed at once")
	f.IntVar(&opts.maxRetries, "max-retries", 3, "Retries of a request failing with a transient error")
	f.IntVarP(&opts.port, "port", "p", 8080, "Port for OAuth callback server")
	f.BoolVar(&opts.writePartial, "write-partial", false, "Write the comments gathered so far when the run aborts")

	return rootCmd
}

// loadSettings reads the environment and applies the flags the user set.
func loadSettings(cmd *cobra.Command, opts options) (config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		s.Workers = opts.workers
	}
	if flags.Changed("max-retries") {
		s.MaxRetries = opts.maxRetries
	}
	if flags.Changed("port") {
		s.OAuthPort = opts.port
	}

	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func run(cmd *cobra.Command, handle string, opts options) error {
	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Level: settings.LogLevel, Format: settings.LogFormat})

	ctx := logger.WithRun(cmd.Context(), uuid.NewString())
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.C(ctx, logger.Named("cli"))

	httpClient := &http.Client{Timeout: settings.HTTPTimeout}
	tokens, err := tokenSource(ctx, cmd, settings, opts, httpClient)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	gate := quota.NewGate(settings.RequestsPerSecond, 1)
	client := youtube.NewClient(tokens,
		youtube.WithHTTPClient(httpClient),
		youtube.WithBaseURL(settings.APIURL),
		youtube.WithGate(gate),
		youtube.WithRetry(settings.MaxRetries, settings.RetryWait),
	)

	agg := aggregator.New(uploads.New(client, nil), threads.New(client, nil), aggregator.Options{
		Workers: settings.Workers,
		Quota:   gate,
	})

	res, runErr := agg.Run(ctx, handle)
	log.Info().
		Int64("quota_used", res.QuotaUsed).
		Int64("retries", client.Retries()).
		Msg("run finished")

	out := cmd.OutOrStdout()
	formatter := display.NewSummaryFormatter(!color.NoColor)

	fatal := runErr != nil && !errors.Is(runErr, aggregator.ErrInterrupted)
	if !fatal || opts.writePartial {
		doc := res.Document()
		if err := output.WriteFile(opts.outputName, doc); err != nil {
			return err
		}
		_, _ = fmt.Fprint(out, formatter.FormatWritten(opts.outputName, len(doc)))
	}
	if runErr == nil || len(res.Outcomes) > 0 {
		_, _ = fmt.Fprint(out, formatter.FormatSummary(res.Summary()))
	}

	if settings.AccessToken == "" {
		deleted, err := discardRejectedToken(runErr, oauth.NewTokenCache(opts.tokenCacheName))
		if err != nil {
			log.Warn().Err(err).Msg("failed to delete rejected token")
		} else if deleted {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Deleted the rejected token in %s; the next run asks for consent again.\n", opts.tokenCacheName)
		}
	}

	if fatal && !opts.writePartial {
		return fmt.Errorf("%w (no output written, use --write-partial to keep what was gathered)", runErr)
	}
	return runErr
}

// discardRejectedToken deletes the cached token when err says the API
// rejected it, so that the next run goes through consent again.
func discardRejectedToken(err error, cache *oauth.TokenCache) (bool, error) {
	if !youtube.IsKind(err, youtube.KindAuth) {
		return false, nil
	}
	if err := cache.Delete(); err != nil {
		return false, err
	}
	return true, nil
}

// tokenSource returns the static token from the environment when set and
// otherwise the cached or freshly authorized OAuth token.
func tokenSource(ctx context.Context, cmd *cobra.Command, s config.Settings, opts options, httpClient *http.Client) (oauth2.TokenSource, error) {
	if s.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.AccessToken, TokenType: "Bearer"}), nil
	}

	cfg, err := oauth.LoadClientSecret(opts.clientSecretName)
	if err != nil {
		return nil, err
	}

	auth := &oauth.Authenticator{
		Config:      cfg,
		Cache:       oauth.NewTokenCache(opts.tokenCacheName),
		Port:        s.OAuthPort,
		OpenBrowser: browser.Open,
		Out:         cmd.ErrOrStderr(),
		HTTPClient:  httpClient,
	}
	return auth.TokenSource(ctx)
}
