package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

type Flow struct {
	oc         *oauth2.Config
	httpClient *http.Client
	verifier   string
}

type FlowOption func(*Flow)

func WithHTTPClient(client *http.Client) FlowOption {
	return func(f *Flow) { f.httpClient = client }
}

func NewFlow(config Config, opts ...FlowOption) *Flow {
	f := &Flow{oc: config.toOAuth2()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GenerateAuthURL returns the consent URL and the state the callback must
// echo. A PKCE verifier is kept for the following ExchangeCode.
func (f *Flow) GenerateAuthURL() (string, string) {
	state := randomState()
	f.verifier = oauth2.GenerateVerifier()

	authURL := f.oc.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(f.verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return authURL, state
}

func (f *Flow) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	var opts []oauth2.AuthCodeOption
	if f.verifier != "" {
		opts = append(opts, oauth2.VerifierOption(f.verifier))
	}

	token, err := f.oc.Exchange(f.context(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// TokenSource returns a source that refreshes token when it expires.
// Refreshes are not tied to the cancellation of ctx.
func (f *Flow) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return f.oc.TokenSource(f.context(context.WithoutCancel(ctx)), token)
}

func (f *Flow) context(ctx context.Context) context.Context {
	if f.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
}

func randomState() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// CallbackServer receives the authorization redirect on the loopback interface.
type CallbackServer struct {
	port int

	mu sync.Mutex
	ln net.Listener
}

// NewCallbackServer creates a server for port; 0 picks a free port on Listen.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{port: port}
}

// Listen binds the port. Calling it before printing the consent URL makes
// sure an early redirect is not refused.
func (s *CallbackServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("failed to listen for OAuth callback on port %d: %w", s.port, err)
	}
	s.ln = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	return nil
}

// Close releases the port if WaitForCallback has not done so.
func (s *CallbackServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}

// RedirectURL is the URL to register as redirect_uri.
func (s *CallbackServer) RedirectURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/callback", s.port)
}

type callbackResult struct {
	code string
	err  error
}

// WaitForCallback serves until one callback arrives and returns its code.
// A state mismatch returns ErrInvalidState.
func (s *CallbackServer) WaitForCallback(ctx context.Context, expectedState string, timeout time.Duration) (string, error) {
	if err := s.Listen(); err != nil {
		return "", err
	}

	results := make(chan callbackResult, 1)
	send := func(r callbackResult) {
		select {
		case results <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if e := q.Get("error"); e != "" {
			http.Error(w, "Authorization was denied. You can close this window.", http.StatusBadRequest)
			send(callbackResult{err: fmt.Errorf("%w: %s", ErrAuthorizationDenied, e)})
			return
		}
		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
			send(callbackResult{err: ErrInvalidState})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
			send(callbackResult{err: errors.New("callback carried no authorization code")})
			return
		}

		_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window and return to the terminal.")
		send(callbackResult{code: code})
	})

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return "", errors.New("callback server closed")
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		// Serve may not have started yet, in which case Shutdown does not know ln
		_ = ln.Close()
		s.mu.Lock()
		if s.ln == ln {
			s.ln = nil
		}
		s.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		return r.code, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for OAuth callback: %w", ctx.Err())
	case <-timer.C:
		return "", fmt.Errorf("timed out after %s waiting for OAuth callback", timeout)
	}
}
