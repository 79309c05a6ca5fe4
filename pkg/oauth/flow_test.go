// Package oauth flow tests document the loopback consent flow.
//
// Test requirements (this file serves as documentation):
// - CallbackServer binds the loopback interface before the URL is shown
// - A callback with the expected state yields the authorization code
// - A foreign state, a denied consent or a missing code is an error
// - ExchangeCode posts the code with the PKCE verifier of GenerateAuthURL
package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func startCallbackServer(t *testing.T) *CallbackServer {
	t.Helper()
	server := NewCallbackServer(0)
	if err := server.Listen(); err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// redirect simulates the browser following the consent redirect and
// reports the status the user would see.
func redirect(server *CallbackServer, query string) <-chan int {
	status := make(chan int, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		resp, err := http.Get(server.RedirectURL() + "?" + query)
		if err != nil {
			status <- 0
			return
		}
		_ = resp.Body.Close()
		status <- resp.StatusCode
	}()
	return status
}

func TestCallbackServer_Callbacks(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   string
		wantErr    error
		wantStatus int
	}{
		{"code with matching state", "code=4/0AX-code&state=s-123", "4/0AX-code", nil, http.StatusOK},
		{"foreign state", "code=4/0AX-code&state=forged", "", ErrInvalidState, http.StatusBadRequest},
		{"denied consent", "error=access_denied&state=s-123", "", ErrAuthorizationDenied, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := startCallbackServer(t)
			status := redirect(server, tt.query)

			code, err := server.WaitForCallback(context.Background(), "s-123", 5*time.Second)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, code)
			}
			if got := <-status; got != tt.wantStatus {
				t.Errorf("browser should get %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestCallbackServer_MissingCode(t *testing.T) {
	server := startCallbackServer(t)
	redirect(server, "state=s-123")

	_, err := server.WaitForCallback(context.Background(), "s-123", 5*time.Second)

	if err == nil || !strings.Contains(err.Error(), "no authorization code") {
		t.Errorf("expected missing code error, got %v", err)
	}
}

func TestCallbackServer_GivesUp(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		server := startCallbackServer(t)

		_, err := server.WaitForCallback(context.Background(), "s", 50*time.Millisecond)

		if err == nil || !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout error, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		server := startCallbackServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := server.WaitForCallback(ctx, "s", 5*time.Second)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestCallbackServer_CancelledBeforeServing covers Ctrl-C during consent:
// the wait returns at once and the port is released every time.
func TestCallbackServer_CancelledBeforeServing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 200; i++ {
		server := startCallbackServer(t)
		addr := strings.TrimSuffix(strings.TrimPrefix(server.RedirectURL(), "http://"), "/callback")

		_, err := server.WaitForCallback(ctx, "s", 5*time.Second)

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if conn, err := net.Dial("tcp", addr); err == nil {
			_ = conn.Close()
			t.Fatalf("port %s should be released after the wait returns", addr)
		}
	}
}

func TestCallbackServer_RedirectURL(t *testing.T) {
	server := startCallbackServer(t)

	if !strings.HasPrefix(server.RedirectURL(), "http://localhost:") || strings.HasSuffix(server.RedirectURL(), ":0/callback") {
		t.Errorf("redirect URL should carry the bound port, got %s", server.RedirectURL())
	}
}

// TestFlow_ExchangeCode_SendsVerifier checks the PKCE pairing: the challenge
// in the consent URL and the verifier posted on exchange belong together.
func TestFlow_ExchangeCode_SendsVerifier(t *testing.T) {
	var form url.Values
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.x","refresh_token":"1//r","token_type":"Bearer","expires_in":3599}`))
	}))
	defer tokenServer.Close()

	flow := NewFlow(Config{
		ClientID:     "cid.apps.googleusercontent.com",
		ClientSecret: "shh",
		TokenURL:     tokenServer.URL,
		RedirectURL:  "http://localhost:8080/callback",
		Scopes:       YouTubeScopes,
	}, WithHTTPClient(tokenServer.Client()))

	authURL, _ := flow.GenerateAuthURL()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("consent URL should parse: %v", err)
	}
	if u.Query().Get("code_challenge_method") != "S256" {
		t.Errorf("consent URL should carry an S256 challenge, got %s", authURL)
	}

	token, err := flow.ExchangeCode(context.Background(), "4/0AX-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "ya29.x" || token.RefreshToken != "1//r" {
		t.Errorf("unexpected token: %+v", token)
	}
	if form.Get("grant_type") != "authorization_code" || form.Get("code") != "4/0AX-code" {
		t.Errorf("exchange should post the code, got %v", form)
	}
	if form.Get("code_verifier") == "" {
		t.Error("exchange should post the PKCE verifier")
	}
}

func TestFlow_ExchangeCode_Rejected(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
	}))
	defer tokenServer.Close()

	_, err := NewFlow(Config{ClientID: "cid", TokenURL: tokenServer.URL}).ExchangeCode(context.Background(), "4/0AX-expired")

	if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("expected invalid_grant error, got %v", err)
	}
}
