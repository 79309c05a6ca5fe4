package uploads

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/pager"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
)

type fakeAPI struct {
	channel    youtube.Channel
	lookupErr  error
	pages      map[string]pager.Page[youtube.Video]
	pageErr    error
	pageErrAt  string
	requested  []string
	playlistID string
}

func (f *fakeAPI) LookupChannel(_ context.Context, _ string) (youtube.Channel, error) {
	return f.channel, f.lookupErr
}

func (f *fakeAPI) ListUploadsPage(_ context.Context, playlistID, token string) (pager.Page[youtube.Video], error) {
	f.playlistID = playlistID
	f.requested = append(f.requested, token)
	if f.pageErr != nil && token == f.pageErrAt {
		return pager.Page[youtube.Video]{}, f.pageErr
	}
	return f.pages[token], nil
}

func quiet() *logger.Logger {
	l := logger.New(logger.Options{Level: "off"})
	return &l
}

func TestList_WalksAllPagesInOrder(t *testing.T) {
	api := &fakeAPI{
		channel: youtube.Channel{ID: "UC1", UploadsPlaylistID: "UU1"},
		pages: map[string]pager.Page[youtube.Video]{
			"":   {Items: []youtube.Video{{ID: "a"}, {ID: "b"}}, NextPageToken: "p2"},
			"p2": {Items: []youtube.Video{{ID: "c"}}},
		},
	}

	ch, videos, err := New(api, quiet()).List(context.Background(), "@x")

	require.NoError(t, err)
	assert.Equal(t, "UC1", ch.ID)
	assert.Equal(t, "UU1", api.playlistID)
	assert.Equal(t, []string{"", "p2"}, api.requested)
	assert.Equal(t, []youtube.Video{{ID: "a"}, {ID: "b"}, {ID: "c"}}, videos)
}

func TestList_ZeroUploads(t *testing.T) {
	api := &fakeAPI{
		channel: youtube.Channel{ID: "UC1", UploadsPlaylistID: "UU1"},
		pages:   map[string]pager.Page[youtube.Video]{"": {}},
	}

	_, videos, err := New(api, quiet()).List(context.Background(), "@x")

	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}

func TestList_PlaylistNotFoundMeansNoUploads(t *testing.T) {
	api := &fakeAPI{
		channel:   youtube.Channel{ID: "UC1", UploadsPlaylistID: "UU1"},
		pageErr:   &youtube.Error{Kind: youtube.KindUnknown, Status: http.StatusNotFound, Reason: youtube.ReasonPlaylistNotFound},
		pageErrAt: "",
	}

	_, videos, err := New(api, quiet()).List(context.Background(), "@fresh")

	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestList_LookupFailureIsReturned(t *testing.T) {
	api := &fakeAPI{lookupErr: &youtube.Error{Kind: youtube.KindChannelNotFound}}

	_, _, err := New(api, quiet()).List(context.Background(), "@nobody")

	require.Error(t, err)
	assert.True(t, youtube.IsKind(err, youtube.KindChannelNotFound))
	assert.Empty(t, api.requested, "no playlist request without a channel")
}

func TestList_LaterPageFailureIsFatal(t *testing.T) {
	api := &fakeAPI{
		channel: youtube.Channel{ID: "UC1", UploadsPlaylistID: "UU1"},
		pages: map[string]pager.Page[youtube.Video]{
			"": {Items: []youtube.Video{{ID: "a"}}, NextPageToken: "p2"},
		},
		pageErr:   errors.New("boom"),
		pageErrAt: "p2",
	}

	_, videos, err := New(api, quiet()).List(context.Background(), "@x")

	require.Error(t, err)
	assert.Nil(t, videos)
	assert.Contains(t, err.Error(), "boom")
}
