// Package uploads enumerates every video a channel has uploaded.
package uploads

import (
	"context"
	"fmt"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/pager"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
)

// API is the subset of the Data API client the lister needs.
type API interface {
	LookupChannel(ctx context.Context, handle string) (youtube.Channel, error)
	ListUploadsPage(ctx context.Context, playlistID, pageToken string) (pager.Page[youtube.Video], error)
}

// Lister resolves a channel and walks its uploads playlist.
type Lister struct {
	api API
	log *logger.Logger
}

// New returns a Lister over api. A nil log uses the package logger.
func New(api API, log *logger.Logger) *Lister {
	if log == nil {
		log = logger.Named("uploads")
	}
	return &Lister{api: api, log: log}
}

// List returns the channel and its uploads in playlist order. A channel with
// no uploads yields an empty, non-nil slice. Every error is fatal to the run.
func (l *Lister) List(ctx context.Context, handle string) (youtube.Channel, []youtube.Video, error) {
	log := logger.C(ctx, l.log)

	ch, err := l.api.LookupChannel(ctx, handle)
	if err != nil {
		return youtube.Channel{}, nil, fmt.Errorf("failed to resolve channel %q: %w", handle, err)
	}
	log.Info().Str("channel_id", ch.ID).Str("title", ch.Title).Msg("channel resolved")

	videos, stats, err := pager.Collect(ctx, func(ctx context.Context, token string) (pager.Page[youtube.Video], error) {
		return l.api.ListUploadsPage(ctx, ch.UploadsPlaylistID, token)
	})
	if err != nil {
		// new channels have no uploads playlist yet
		if youtube.ReasonOf(err) == youtube.ReasonPlaylistNotFound && stats.Pages == 0 {
			log.Info().Str("playlist_id", ch.UploadsPlaylistID).Msg("uploads playlist not found, channel has no videos")
			return ch, []youtube.Video{}, nil
		}
		return ch, nil, fmt.Errorf("failed to list uploads of %q: %w", handle, err)
	}

	ev := log.Info().Int("videos", len(videos)).Int("pages", stats.Pages)
	if stats.Skipped > 0 {
		ev = ev.Int("skipped", stats.Skipped)
	}
	ev.Msg("uploads enumerated")

	return ch, videos, nil
}
