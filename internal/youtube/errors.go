package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind classifies a failure of the YouTube Data API.
type Kind uint8

const (
	// KindUnknown is any non-2xx answer that fits no other kind. Not retried.
	KindUnknown Kind = iota

	// KindAuth means the credential was rejected or could not be obtained.
	KindAuth

	// KindQuotaExceeded means the project's daily quota is spent.
	KindQuotaExceeded

	// KindChannelNotFound means the handle does not resolve to a channel.
	KindChannelNotFound

	// KindTransient covers connection failures, timeouts, rate limiting and 5xx.
	KindTransient

	// KindCommentsDisabled means the video does not accept comments.
	KindCommentsDisabled

	// KindMalformed means the response lacked expected fields or was not JSON.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindChannelNotFound:
		return "channel_not_found"
	case KindTransient:
		return "transient"
	case KindCommentsDisabled:
		return "comments_disabled"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is a classified API failure.
type Error struct {
	Kind   Kind
	Op     string // logical endpoint, e.g. "commentThreads.list"
	Status int    // HTTP status, 0 when no response was received
	Reason string // googleapi error reason, e.g. "commentsDisabled"
	Err    error
}

func (e *Error) Error() string {
	msg := e.message()
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", msg, e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s)", msg, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) message() string {
	switch e.Kind {
	case KindAuth:
		return "YouTube API authentication failed - run again to re-authenticate"
	case KindQuotaExceeded:
		return "YouTube API daily quota exceeded - quota resets at midnight Pacific time"
	case KindChannelNotFound:
		return "YouTube channel not found - check the channel handle"
	case KindTransient:
		if e.Status == http.StatusTooManyRequests {
			return "YouTube API rate limit exceeded - please try again later"
		}
		if e.Status >= 500 {
			return "YouTube API server error - please try again later"
		}
		return "YouTube API unreachable - check your network connection"
	case KindCommentsDisabled:
		return "YouTube API reports comments are disabled for this video"
	case KindMalformed:
		return "YouTube API returned a malformed response"
	default:
		if e.Status != 0 {
			return fmt.Sprintf("YouTube API error (status %d)", e.Status)
		}
		return "YouTube API error"
	}
}

// KindOf extracts the Kind of err, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ReasonOf returns the googleapi reason carried by err, if any.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindAuth, KindQuotaExceeded, KindChannelNotFound:
		return true
	}
	return false
}

// IsRetryable reports whether err may succeed when the request is repeated.
func IsRetryable(err error) bool {
	return IsKind(err, KindTransient)
}

// classifyStatus maps a non-2xx answer to an *Error. apiErr may be nil when
// the body was not a Google error document.
func classifyStatus(op string, status int, apiErr *googleapi.Error) *Error {
	e := &Error{Op: op, Status: status}
	if apiErr != nil {
		e.Err = apiErr
		if len(apiErr.Errors) > 0 {
			e.Reason = apiErr.Errors[0].Reason
		}
	}

	switch e.Reason {
	case "quotaExceeded", "dailyLimitExceeded":
		e.Kind = KindQuotaExceeded
		return e
	case "rateLimitExceeded", "userRateLimitExceeded":
		e.Kind = KindTransient
		return e
	case "commentsDisabled":
		e.Kind = KindCommentsDisabled
		return e
	case "channelNotFound":
		e.Kind = KindChannelNotFound
		return e
	}

	switch {
	case status == http.StatusForbidden && op == opCommentThreads:
		// a video can forbid listing for reasons of its own
		e.Kind = KindUnknown
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusTooManyRequests:
		e.Kind = KindTransient
	case status == http.StatusInternalServerError, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		e.Kind = KindTransient
	default:
		e.Kind = KindUnknown
	}
	return e
}

func malformed(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Status: http.StatusOK, Err: err}
}
