// Package youtube provides a client for the parts of the YouTube Data API v3
// needed to walk a channel's uploads and their comment threads.
//
// This package enables ytcomments to:
// - Resolve a channel handle to its uploads playlist
// - Page through the uploads playlist
// - Page through a video's comment threads and a thread's replies
// - Classify API failures (auth, quota, transient, comments disabled, malformed)
package youtube

// Channel is a resolved channel.
type Channel struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
}

// Video is one entry of a channel's uploads playlist.
type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Comment is a single comment, either top-level or a reply.
type Comment struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
	ParentID   string `json:"parent_id,omitempty"`
}

// CommentThread is a top-level comment with the replies the API inlined.
type CommentThread struct {
	ID              string
	TopLevel        Comment
	TotalReplyCount int
	Replies         []Comment

	// SkippedReplies counts inlined replies dropped as malformed.
	SkippedReplies int
}
