// Package contracts integration tests verify that actual clients
// correctly parse API responses matching the defined contracts.
package contracts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/gauthierbraillon/ytcomments/internal/threads"
	"github.com/gauthierbraillon/ytcomments/internal/uploads"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
	"github.com/gauthierbraillon/ytcomments/pkg/oauth"
)

// contractServer answers every Data API resource with its recorded contract.
func contractServer(t *testing.T, overrides map[string]string) *httptest.Server {
	t.Helper()
	bodies := map[string]string{
		"channels":       ChannelListContract,
		"playlistItems":  PlaylistItemListContract,
		"commentThreads": CommentThreadListContract,
		"comments":       CommentListContract,
	}
	for k, v := range overrides {
		bodies[k] = v
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := strings.TrimPrefix(r.URL.Path, "/youtube/v3/")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case resource == "commentThreads" && bodies[resource] == CommentsDisabledContract:
			w.WriteHeader(http.StatusForbidden)
		case resource == "playlistItems" && r.URL.Query().Get("pageToken") != "":
			// second page of uploads is empty
			_, _ = w.Write([]byte(`{"kind": "youtube#playlistItemListResponse", "items": []}`))
			return
		}

		body, ok := bodies[resource]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func contractClient(server *httptest.Server) *youtube.Client {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return youtube.NewClient(tokens, youtube.WithBaseURL(server.URL), youtube.WithRetry(1, time.Millisecond))
}

// TestYouTubeClient_ParsesChannelContract verifies the YouTube client
// correctly resolves a channel from a contract response.
func TestYouTubeClient_ParsesChannelContract(t *testing.T) {
	client := contractClient(contractServer(t, nil))

	ch, err := client.LookupChannel(context.Background(), "@example")
	if err != nil {
		t.Fatalf("client should parse contract response: %v", err)
	}
	if ch.ID != "UCexampleexampleexample1" {
		t.Errorf("expected channel id 'UCexampleexampleexample1', got %q", ch.ID)
	}
	if ch.UploadsPlaylistID != "UUexampleexampleexample1" {
		t.Errorf("expected uploads playlist 'UUexampleexampleexample1', got %q", ch.UploadsPlaylistID)
	}
}

func TestUploads_ParsesPlaylistContract(t *testing.T) {
	client := contractClient(contractServer(t, nil))

	_, videos, err := uploads.New(client, nil).List(context.Background(), "@example")
	if err != nil {
		t.Fatalf("uploads should parse contract response: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "vid00000001" || videos[0].Title != "First video" {
		t.Errorf("unexpected first video: %+v", videos[0])
	}
	if videos[1].ID != "vid00000002" {
		t.Errorf("playlist order should be kept, got %+v", videos[1])
	}
}

// TestThreads_ParsesCommentContracts verifies that inlined replies and the
// fetched remainder are merged without duplicates.
func TestThreads_ParsesCommentContracts(t *testing.T) {
	client := contractClient(contractServer(t, nil))

	tree, err := threads.New(client, nil).Build(context.Background(), "vid00000001")
	if err != nil {
		t.Fatalf("threads should parse contract responses: %v", err)
	}
	if len(tree.Comments) != 1 {
		t.Fatalf("expected 1 top-level comment, got %d", len(tree.Comments))
	}

	top := tree.Comments[0]
	if top.Text != "Great video & thanks" {
		t.Errorf("plain text should be used, got %q", top.Text)
	}
	if top.AuthorName != "@alice" {
		t.Errorf("expected author '@alice', got %q", top.AuthorName)
	}

	var authors []string
	for _, r := range top.Replies {
		authors = append(authors, r.AuthorName)
	}
	if got := strings.Join(authors, ","); got != "@bob,@carol,@dave" {
		t.Errorf("expected replies @bob,@carol,@dave, got %s", got)
	}
}

func TestThreads_ParsesCommentsDisabledContract(t *testing.T) {
	client := contractClient(contractServer(t, map[string]string{"commentThreads": CommentsDisabledContract}))

	tree, err := threads.New(client, nil).Build(context.Background(), "vid00000001")
	if err != nil {
		t.Fatalf("disabled comments should not be an error: %v", err)
	}
	if !tree.Disabled {
		t.Error("tree should be marked disabled")
	}
}

// Integration test: Verify OAuth flow can parse token response
func TestOAuthFlow_ParsesTokenResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(TokenContract))
	}))
	defer server.Close()

	config := oauth.Config{
		ClientID: "id", ClientSecret: "secret",
		TokenURL:    server.URL,
		RedirectURL: "http://localhost:8080/callback",
	}

	token, err := oauth.NewFlow(config).ExchangeCode(context.Background(), "4/0Example")
	if err != nil {
		t.Fatalf("should parse response: %v", err)
	}
	if token.AccessToken != "ya29.a0AfB_byExampleAccessToken" {
		t.Errorf("unexpected access token: %+v", token)
	}
	if token.RefreshToken != "1//0gExampleRefreshToken" {
		t.Errorf("unexpected refresh token: %+v", token)
	}
	if token.Expiry.IsZero() {
		t.Error("expires_in should set an expiry")
	}
}
