// Package threads rebuilds the two-level comment forest of a video.
package threads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/pager"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
)

// API is the subset of the Data API client the builder needs.
type API interface {
	ListCommentThreadsPage(ctx context.Context, videoID, pageToken string) (pager.Page[youtube.CommentThread], error)
	ListRepliesPage(ctx context.Context, parentID, pageToken string) (pager.Page[youtube.Comment], error)
}

// Reply is a direct child of a top-level comment. Replies to replies are
// flattened to this level by the API.
type Reply struct {
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
}

// TopLevelComment is a comment posted directly on a video.
type TopLevelComment struct {
	Text       string  `json:"text"`
	AuthorName string  `json:"author_name"`
	Replies    []Reply `json:"children"`
}

// MarshalJSON always emits children as an array. Text is not HTML-escaped
// here; an enclosing encoder that escapes HTML still does so.
func (c TopLevelComment) MarshalJSON() ([]byte, error) {
	type plain TopLevelComment
	if c.Replies == nil {
		c.Replies = []Reply{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(c)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Tree is the comment forest of one video, in API order.
type Tree struct {
	Comments []TopLevelComment

	// Skipped counts threads and replies dropped for missing text or author.
	Skipped int

	// Disabled is set when the video does not accept comments.
	Disabled bool
}

// Builder fetches comment threads and completes their replies.
type Builder struct {
	api API
	log *logger.Logger
}

// New returns a Builder over api. A nil log uses the package logger.
func New(api API, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Named("threads")
	}
	return &Builder{api: api, log: log}
}

// Build returns the comment forest of videoID. A video with comments disabled
// yields a Disabled tree and no error.
func (b *Builder) Build(ctx context.Context, videoID string) (Tree, error) {
	threads, stats, err := pager.Collect(ctx, func(ctx context.Context, token string) (pager.Page[youtube.CommentThread], error) {
		return b.api.ListCommentThreadsPage(ctx, videoID, token)
	})
	if err != nil {
		if youtube.IsKind(err, youtube.KindCommentsDisabled) {
			return Tree{Comments: []TopLevelComment{}, Disabled: true}, nil
		}
		return Tree{Comments: []TopLevelComment{}}, fmt.Errorf("failed to list comment threads of video %s: %w", videoID, err)
	}

	tree := Tree{
		Comments: make([]TopLevelComment, 0, len(threads)),
		Skipped:  stats.Skipped,
	}

	for _, th := range threads {
		replies, skipped, err := b.replies(ctx, th)
		if err != nil {
			return Tree{Comments: []TopLevelComment{}}, fmt.Errorf("failed to list replies of comment %s: %w", th.ID, err)
		}
		tree.Skipped += skipped

		top := TopLevelComment{
			Text:       th.TopLevel.Text,
			AuthorName: th.TopLevel.AuthorName,
			Replies:    make([]Reply, 0, len(replies)),
		}
		for _, r := range replies {
			top.Replies = append(top.Replies, Reply{Text: r.Text, AuthorName: r.AuthorName})
		}
		tree.Comments = append(tree.Comments, top)
	}

	if tree.Skipped > 0 {
		logger.C(ctx, b.log).Warn().Str("video_id", videoID).Int("skipped", tree.Skipped).Msg("malformed comments skipped")
	}
	return tree, nil
}

// replies returns the complete reply list of th. When the API reports more
// replies than it inlined, the fetched list is authoritative for order.
func (b *Builder) replies(ctx context.Context, th youtube.CommentThread) ([]youtube.Comment, int, error) {
	if th.TotalReplyCount <= len(th.Replies)+th.SkippedReplies {
		return th.Replies, th.SkippedReplies, nil
	}

	fetched, stats, err := pager.Collect(ctx, func(ctx context.Context, token string) (pager.Page[youtube.Comment], error) {
		return b.api.ListRepliesPage(ctx, th.ID, token)
	})
	if err != nil {
		return nil, 0, err
	}

	// inlined replies that were malformed come back malformed here too
	return merge(th.Replies, fetched), stats.Skipped, nil
}

// merge keeps fetched in API order and appends the inlined replies missing
// from it.
func merge(inlined, fetched []youtube.Comment) []youtube.Comment {
	seen := make(map[string]struct{}, len(fetched))
	out := make([]youtube.Comment, 0, len(inlined)+len(fetched))
	for _, c := range fetched {
		if c.ID != "" {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
		}
		out = append(out, c)
	}
	for _, c := range inlined {
		if _, ok := seen[c.ID]; ok && c.ID != "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
