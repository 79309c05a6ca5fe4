package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gauthierbraillon/ytcomments/internal/pager"
)

const (
	uploadsPageSize = "50"
	commentPageSize = "100"

	opCommentThreads = "commentThreads.list"

	// ReasonPlaylistNotFound is returned for a missing or private uploads playlist.
	ReasonPlaylistNotFound = "playlistNotFound"
)

// LookupChannel resolves a handle ("@name" or "name") or a channel id ("UC...")
// to a channel and its uploads playlist.
func (c *Client) LookupChannel(ctx context.Context, handle string) (Channel, error) {
	const op = "channels.list"

	h := strings.TrimSpace(handle)
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	if isChannelID(h) {
		params.Set("id", h)
	} else {
		params.Set("forHandle", "@"+strings.TrimPrefix(h, "@"))
	}

	var resp channelListResponse
	if err := c.get(ctx, op, "channels", params, &resp); err != nil {
		return Channel{}, err
	}

	if resp.Items == nil || len(*resp.Items) == 0 {
		return Channel{}, &Error{Kind: KindChannelNotFound, Op: op, Err: fmt.Errorf("no channel matches %q", handle)}
	}

	item := (*resp.Items)[0]
	if item.ContentDetails == nil || item.ContentDetails.RelatedPlaylists.Uploads == "" {
		return Channel{}, malformed(op, errors.New("channel has no uploads playlist"))
	}

	return Channel{
		ID:                item.ID,
		Title:             item.Snippet.Title,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// ListUploadsPage fetches one page of a channel's uploads playlist.
// Items without a video id or title are skipped and counted.
func (c *Client) ListUploadsPage(ctx context.Context, playlistID, pageToken string) (pager.Page[Video], error) {
	const op = "playlistItems.list"

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", uploadsPageSize)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemListResponse
	if err := c.get(ctx, op, "playlistItems", params, &resp); err != nil {
		return pager.Page[Video]{}, err
	}

	page := pager.Page[Video]{
		Items:         make([]Video, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for i, item := range resp.Items {
		id := item.ContentDetails.VideoID
		if id == "" && item.Snippet != nil {
			id = item.Snippet.ResourceID.VideoID
		}

		var err error
		switch {
		case id == "":
			err = errMissingVideo
		case item.Snippet == nil || item.Snippet.Title == nil:
			err = errMissingTitle
		}
		if err != nil {
			page.Skipped++
			c.log.Warn().Err(err).Str("playlist_id", playlistID).Int("index", i).Msg("skipping playlist item")
			continue
		}

		page.Items = append(page.Items, Video{ID: id, Title: *item.Snippet.Title})
	}

	return page, nil
}

// ListCommentThreadsPage fetches one page of a video's comment threads,
// including whatever replies the API inlines. Threads whose top-level comment
// lacks text or author are skipped and counted.
func (c *Client) ListCommentThreadsPage(ctx context.Context, videoID, pageToken string) (pager.Page[CommentThread], error) {
	const op = opCommentThreads

	params := url.Values{}
	params.Set("part", "snippet,replies")
	params.Set("videoId", videoID)
	params.Set("maxResults", commentPageSize)
	params.Set("textFormat", "plainText")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp commentThreadListResponse
	if err := c.get(ctx, op, "commentThreads", params, &resp); err != nil {
		return pager.Page[CommentThread]{}, err
	}

	page := pager.Page[CommentThread]{
		Items:         make([]CommentThread, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.Snippet == nil {
			page.Skipped++
			c.log.Warn().Str("video_id", videoID).Str("thread_id", item.ID).Msg("skipping thread without snippet")
			continue
		}

		top, err := item.Snippet.TopLevelComment.toComment()
		if err != nil {
			page.Skipped++
			c.log.Warn().Err(err).Str("video_id", videoID).Str("thread_id", item.ID).Msg("skipping comment thread")
			continue
		}

		thread := CommentThread{
			ID:              item.ID,
			TopLevel:        top,
			TotalReplyCount: item.Snippet.TotalReplyCount,
			Replies:         make([]Comment, 0, len(item.Replies.Comments)),
		}
		for j := range item.Replies.Comments {
			reply, err := item.Replies.Comments[j].toComment()
			if err != nil {
				thread.SkippedReplies++
				c.log.Warn().Err(err).Str("thread_id", item.ID).Msg("skipping inlined reply")
				continue
			}
			thread.Replies = append(thread.Replies, reply)
		}

		page.Items = append(page.Items, thread)
	}

	return page, nil
}

// ListRepliesPage fetches one page of the replies to a top-level comment.
func (c *Client) ListRepliesPage(ctx context.Context, parentID, pageToken string) (pager.Page[Comment], error) {
	const op = "comments.list"

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("parentId", parentID)
	params.Set("maxResults", commentPageSize)
	params.Set("textFormat", "plainText")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp commentListResponse
	if err := c.get(ctx, op, "comments", params, &resp); err != nil {
		return pager.Page[Comment]{}, err
	}

	page := pager.Page[Comment]{
		Items:         make([]Comment, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for i := range resp.Items {
		reply, err := resp.Items[i].toComment()
		if err != nil {
			page.Skipped++
			c.log.Warn().Err(err).Str("parent_id", parentID).Str("comment_id", resp.Items[i].ID).Msg("skipping reply")
			continue
		}
		if reply.ParentID == "" {
			reply.ParentID = parentID
		}
		page.Items = append(page.Items, reply)
	}

	return page, nil
}

func isChannelID(s string) bool {
	return len(s) == 24 && strings.HasPrefix(s, "UC")
}
