// Package aggregator harvests the comments of every upload of a channel.
//
// This package enables ytcomments to:
// - Enumerate a channel's uploads once
// - Build the comment forest of each video, optionally in parallel
// - Keep the output in enumeration order regardless of worker count
// - Isolate per-video failures and abort on fatal ones
package aggregator

import (
	"fmt"

	"github.com/gauthierbraillon/ytcomments/internal/threads"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
)

// Status is the processing state of one video.
type Status string

const (
	StatusOK               Status = "ok"
	StatusCommentsDisabled Status = "comments_disabled"
	StatusFailed           Status = "failed"
	StatusPending          Status = "pending"
)

// VideoComments is one entry of the output document.
type VideoComments struct {
	Title    string                    `json:"title"`
	ID       string                    `json:"id"`
	Comments []threads.TopLevelComment `json:"comments"`
}

// Document is the output of a run, in upload enumeration order.
type Document []VideoComments

// Normalized returns a copy of d whose comment lists are never nil, so every
// entry encodes "comments" as an array.
func (d Document) Normalized() Document {
	out := make(Document, len(d))
	for i, v := range d {
		if v.Comments == nil {
			v.Comments = []threads.TopLevelComment{}
		}
		out[i] = v
	}
	return out
}

// Outcome records what happened to one video.
type Outcome struct {
	Video    youtube.Video
	Status   Status
	Err      error
	Skipped  int
	Comments []threads.TopLevelComment
}

// Result is everything a run produced.
type Result struct {
	Channel   youtube.Channel
	Outcomes  []Outcome
	QuotaUsed int64
}

// Document returns the processed videos; pending ones are left out.
func (r Result) Document() Document {
	doc := make(Document, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == StatusPending {
			continue
		}
		doc = append(doc, VideoComments{Title: o.Video.Title, ID: o.Video.ID, Comments: o.Comments})
	}
	return doc.Normalized()
}

// Failure is a video that did not end up with its comments.
type Failure struct {
	VideoID string
	Title   string
	Status  Status
	Err     error
}

// Summary holds the end-of-run counts.
type Summary struct {
	Total     int
	OK        int
	Disabled  int
	Failed    int
	Pending   int
	Skipped   int
	QuotaUsed int64
	Failures  []Failure
}

// Summary counts the outcomes of r.
func (r Result) Summary() Summary {
	s := Summary{Total: len(r.Outcomes), QuotaUsed: r.QuotaUsed}
	for _, o := range r.Outcomes {
		s.Skipped += o.Skipped
		switch o.Status {
		case StatusOK:
			s.OK++
			continue
		case StatusCommentsDisabled:
			s.Disabled++
		case StatusFailed:
			s.Failed++
		case StatusPending:
			s.Pending++
			continue
		}
		s.Failures = append(s.Failures, Failure{VideoID: o.Video.ID, Title: o.Video.Title, Status: o.Status, Err: o.Err})
	}
	return s
}

// Processed is the number of videos that reached a final status.
func (s Summary) Processed() int {
	return s.Total - s.Pending
}

func (s Summary) String() string {
	line := fmt.Sprintf("Processed %d videos: %d ok, %d with comments disabled, %d skipped due to errors",
		s.Processed(), s.OK, s.Disabled, s.Failed)
	if s.Pending > 0 {
		line += fmt.Sprintf(", %d not processed", s.Pending)
	}
	return line
}
