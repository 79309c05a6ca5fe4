package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/quota"
)

const (
	defaultBaseURL    = "https://www.googleapis.com"
	apiPath           = "/youtube/v3/"
	defaultMaxRetries = 3
	defaultRetryWait  = 500 * time.Millisecond
	maxRetryWait      = 10 * time.Second
	maxBodyBytes      = 8 << 20
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gate is acquired once before every HTTP attempt.
type Gate interface {
	Acquire(ctx context.Context) error
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithGate shares a quota gate between clients and workers.
func WithGate(g Gate) ClientOption {
	return func(c *Client) {
		c.gate = g
	}
}

// WithRetry sets how many times a transient failure is retried and the first wait.
func WithRetry(maxRetries int, initialWait time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryWait = initialWait
	}
}

// WithLogger sets the logger used for retries and skipped items.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// Client is a YouTube Data API client.
type Client struct {
	tokens     oauth2.TokenSource
	baseURL    string
	httpClient HTTPClient
	gate       Gate
	maxRetries int
	retryWait  time.Duration
	log        *logger.Logger
	retries    atomic.Int64
}

// NewClient creates a new YouTube API client drawing credentials from tokens.
func NewClient(tokens oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		tokens:     tokens,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		gate:       quota.NewGate(0, 1),
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("youtube")
	}
	if c.retryWait <= 0 {
		c.retryWait = defaultRetryWait
	}

	return c
}

// Retries returns how many transient failures were retried so far.
func (c *Client) Retries() int64 {
	return c.retries.Load()
}

// get performs one logical GET (with retries) and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, resource string, params url.Values, out any) error {
	endpoint := c.baseURL + apiPath + resource + "?" + params.Encode()

	body, err := c.doWithRetry(ctx, op, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return malformed(op, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, op, endpoint string) ([]byte, error) {
	eb := &backoff.ExponentialBackOff{
		InitialInterval:     c.retryWait,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         maxRetryWait,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	eb.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(c.maxRetries, 0))), ctx)

	attempt := 0
	return backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempt++
		body, err := c.doRequest(ctx, op, endpoint)
		if err != nil && !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}, policy, func(err error, wait time.Duration) {
		c.retries.Add(1)
		logger.C(ctx, c.log).Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("youtube transient error retrying")
	})
}

// classifyTokenError tells a rejected credential from a token endpoint that
// could not be reached. Only the former needs a new consent.
func classifyTokenError(op string, err error) *Error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if status >= http.StatusInternalServerError {
			return &Error{Kind: KindTransient, Op: op, Status: status, Err: err}
		}
		return &Error{Kind: KindAuth, Op: op, Status: status, Err: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{Kind: KindTransient, Op: op, Err: err}
	}
	return &Error{Kind: KindAuth, Op: op, Err: err}
}

func (c *Client) doRequest(ctx context.Context, op, endpoint string) ([]byte, error) {
	if err := c.gate.Acquire(ctx); err != nil {
		return nil, err
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return nil, classifyTokenError(op, err)
	}

	// Once issued, a request runs to completion even if ctx is cancelled;
	// only its deadline still applies.
	reqCtx, cancel := detach(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransient, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(op, resp, body)
	}

	return body, nil
}

func (c *Client) handleAPIError(op string, resp *http.Response, body []byte) error {
	replay := &http.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}

	var apiErr *googleapi.Error
	if err := googleapi.CheckResponse(replay); err != nil {
		errors.As(err, &apiErr)
	}

	return classifyStatus(op, resp.StatusCode, apiErr)
}

// detach keeps ctx's values and deadline but drops its cancellation.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	d := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(d, dl)
	}
	return d, func() {}
}
