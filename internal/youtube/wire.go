package youtube

import "errors"

// API response types (private - implementation detail). Pointer fields mark
// values whose absence makes an item malformed.

type pageInfo struct {
	NextPageToken string `json:"nextPageToken"`
}

type channelListResponse struct {
	Items *[]struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails *struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemListResponse struct {
	pageInfo
	Items []struct {
		Snippet *struct {
			Title      *string `json:"title"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type commentResource struct {
	ID      string `json:"id"`
	Snippet *struct {
		TextOriginal      *string `json:"textOriginal"`
		TextDisplay       *string `json:"textDisplay"`
		AuthorDisplayName *string `json:"authorDisplayName"`
		ParentID          string  `json:"parentId"`
	} `json:"snippet"`
}

type commentThreadListResponse struct {
	pageInfo
	Items []struct {
		ID      string `json:"id"`
		Snippet *struct {
			TopLevelComment *commentResource `json:"topLevelComment"`
			TotalReplyCount int              `json:"totalReplyCount"`
		} `json:"snippet"`
		Replies struct {
			Comments []commentResource `json:"comments"`
		} `json:"replies"`
	} `json:"items"`
}

type commentListResponse struct {
	pageInfo
	Items []commentResource `json:"items"`
}

var (
	errMissingText   = errors.New("comment has no text")
	errMissingAuthor = errors.New("comment has no author")
	errMissingVideo  = errors.New("playlist item has no video id")
	errMissingTitle  = errors.New("playlist item has no title")
)

// toComment converts a wire comment, rejecting it when text or author is absent.
func (r *commentResource) toComment() (Comment, error) {
	if r == nil || r.Snippet == nil {
		return Comment{}, errMissingText
	}
	s := r.Snippet

	var text *string
	switch {
	case s.TextOriginal != nil:
		text = s.TextOriginal
	case s.TextDisplay != nil:
		text = s.TextDisplay
	default:
		return Comment{}, errMissingText
	}
	if s.AuthorDisplayName == nil {
		return Comment{}, errMissingAuthor
	}

	return Comment{
		ID:         r.ID,
		Text:       *text,
		AuthorName: *s.AuthorDisplayName,
		ParentID:   s.ParentID,
	}, nil
}
