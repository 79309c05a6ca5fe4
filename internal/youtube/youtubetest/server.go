// Package youtubetest serves an in-memory YouTube Data API for tests.
package youtubetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Reply is a reply to a top-level comment.
type Reply struct {
	ID     string
	Text   string
	Author string
}

// Thread is a top-level comment. The first Inline replies are embedded in
// commentThreads.list answers; all of them are served by comments.list.
type Thread struct {
	ID      string
	Text    string
	Author  string
	Replies []Reply
	Inline  int
}

// Video is an upload with its comment threads.
type Video struct {
	ID               string
	Title            string
	Threads          []Thread
	CommentsDisabled bool
}

// Channel is a channel and its uploads, newest first.
type Channel struct {
	ID        string
	Handle    string // without "@"
	Title     string
	UploadsID string
	Videos    []Video
}

type failure struct {
	resource string
	id       string
	page     int
}

type injected struct {
	status int
	reason string
	times  int // < 0 means always
}

// Server is a fake Data API. Page sizes default to the API maximums.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	channels  []Channel
	pageSizes map[string]int
	failures  map[failure]*injected
	hits      map[string]int
}

// New starts a server for channels and closes it when the test ends.
func New(t testing.TB, channels ...Channel) *Server {
	t.Helper()
	s := &Server{
		channels:  channels,
		pageSizes: map[string]int{"playlistItems": 50, "commentThreads": 100, "comments": 100},
		failures:  make(map[failure]*injected),
		hits:      make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/channels", s.handleChannels)
	mux.HandleFunc("/youtube/v3/playlistItems", s.handlePlaylistItems)
	mux.HandleFunc("/youtube/v3/commentThreads", s.handleCommentThreads)
	mux.HandleFunc("/youtube/v3/comments", s.handleComments)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetPageSize overrides the page size of resource ("playlistItems", "commentThreads" or "comments").
func (s *Server) SetPageSize(resource string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSizes[resource] = n
}

// FailOnce makes the given page (1-based) of resource for id fail once.
// id is the playlist, video or parent comment id.
func (s *Server) FailOnce(resource, id string, page, status int) {
	s.fail(resource, id, page, status, "", 1)
}

// FailAlways makes every first-page request of resource for id fail.
func (s *Server) FailAlways(resource, id string, status int, reason string) {
	s.fail(resource, id, 1, status, reason, -1)
}

func (s *Server) fail(resource, id string, page, status int, reason string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failure{resource, id, page}] = &injected{status: status, reason: reason, times: times}
}

// Hits returns how many requests resource has received.
func (s *Server) Hits(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[resource]
}

// Total returns how many requests were received over all resources.
func (s *Server) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// intercept counts the request and writes an injected failure if one is due.
func (s *Server) intercept(w http.ResponseWriter, resource, id string, page int) bool {
	s.mu.Lock()
	s.hits[resource]++
	f, ok := s.failures[failure{resource, id, page}]
	if ok && f.times == 0 {
		ok = false
	}
	if ok && f.times > 0 {
		f.times--
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	WriteError(w, f.status, f.reason)
	return true
}

func (s *Server) pageSize(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSizes[resource]
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("id")
	if key == "" {
		key = strings.TrimPrefix(q.Get("forHandle"), "@")
	}
	if s.intercept(w, "channels", key, 1) {
		return
	}

	resp := map[string]any{"kind": "youtube#channelListResponse"}
	for _, ch := range s.channels {
		if ch.ID == key || strings.EqualFold(ch.Handle, key) {
			resp["items"] = []any{map[string]any{
				"id":             ch.ID,
				"snippet":        map[string]any{"title": ch.Title},
				"contentDetails": map[string]any{"relatedPlaylists": map[string]any{"uploads": ch.UploadsID}},
			}}
			break
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handlePlaylistItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("playlistId")
	page := pageNumber(q.Get("pageToken"))
	if s.intercept(w, "playlistItems", id, page) {
		return
	}

	ch, ok := s.channelByUploads(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "playlistNotFound")
		return
	}

	items, next := paginate(ch.Videos, page, s.pageSize("playlistItems"))
	out := make([]any, 0, len(items))
	for _, v := range items {
		out = append(out, map[string]any{
			"snippet": map[string]any{
				"title":      v.Title,
				"resourceId": map[string]any{"kind": "youtube#video", "videoId": v.ID},
			},
			"contentDetails": map[string]any{"videoId": v.ID},
		})
	}
	writeList(w, out, next)
}

func (s *Server) handleCommentThreads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("videoId")
	page := pageNumber(q.Get("pageToken"))
	if s.intercept(w, "commentThreads", id, page) {
		return
	}

	v, ok := s.video(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "videoNotFound")
		return
	}
	if v.CommentsDisabled {
		WriteError(w, http.StatusForbidden, "commentsDisabled")
		return
	}

	threads, next := paginate(v.Threads, page, s.pageSize("commentThreads"))
	out := make([]any, 0, len(threads))
	for _, th := range threads {
		item := map[string]any{
			"id": th.ID,
			"snippet": map[string]any{
				"videoId":         v.ID,
				"totalReplyCount": len(th.Replies),
				"topLevelComment": comment(th.ID, th.Text, th.Author, ""),
			},
		}
		if n := min(th.Inline, len(th.Replies)); n > 0 {
			inline := make([]any, 0, n)
			for _, rep := range th.Replies[:n] {
				inline = append(inline, comment(rep.ID, rep.Text, rep.Author, th.ID))
			}
			item["replies"] = map[string]any{"comments": inline}
		}
		out = append(out, item)
	}
	writeList(w, out, next)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("parentId")
	page := pageNumber(q.Get("pageToken"))
	if s.intercept(w, "comments", id, page) {
		return
	}

	th, ok := s.thread(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "commentNotFound")
		return
	}

	replies, next := paginate(th.Replies, page, s.pageSize("comments"))
	out := make([]any, 0, len(replies))
	for _, rep := range replies {
		out = append(out, comment(rep.ID, rep.Text, rep.Author, th.ID))
	}
	writeList(w, out, next)
}

func (s *Server) channelByUploads(id string) (Channel, bool) {
	for _, ch := range s.channels {
		if ch.UploadsID == id {
			return ch, true
		}
	}
	return Channel{}, false
}

func (s *Server) video(id string) (Video, bool) {
	for _, ch := range s.channels {
		for _, v := range ch.Videos {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Video{}, false
}

func (s *Server) thread(id string) (Thread, bool) {
	for _, ch := range s.channels {
		for _, v := range ch.Videos {
			for _, th := range v.Threads {
				if th.ID == id {
					return th, true
				}
			}
		}
	}
	return Thread{}, false
}

func comment(id, text, author, parent string) map[string]any {
	snippet := map[string]any{
		"textOriginal":      text,
		"textDisplay":       text,
		"authorDisplayName": author,
	}
	if parent != "" {
		snippet["parentId"] = parent
	}
	return map[string]any{"kind": "youtube#comment", "id": id, "snippet": snippet}
}

// pageNumber decodes tokens of the form "p<N>"; the empty token is page 1.
func pageNumber(token string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(token, "p"))
	if token == "" || err != nil || n < 1 {
		return 1
	}
	return n
}

func paginate[T any](all []T, page, size int) ([]T, string) {
	if size <= 0 {
		size = len(all) + 1
	}
	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	next := ""
	if end < len(all) {
		next = fmt.Sprintf("p%d", page+1)
	}
	return all[start:end], next
}

func writeList(w http.ResponseWriter, items []any, next string) {
	resp := map[string]any{
		"items":    items,
		"pageInfo": map[string]any{"resultsPerPage": len(items)},
	}
	if next != "" {
		resp["nextPageToken"] = next
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Google JSON error document. An empty reason writes a
// bare status with a plain text body.
func WriteError(w http.ResponseWriter, status int, reason string) {
	if reason == "" {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": reason,
			"errors": []any{map[string]any{
				"domain":  "youtube.api",
				"reason":  reason,
				"message": reason,
			}},
		},
	})
}
