// Package pager follows continuation tokens across a paginated API.
package pager

import (
	"context"
	"errors"
	"fmt"
)

// ErrRepeatedToken is returned when an API hands back a page token that was
// already requested, which would otherwise loop forever.
var ErrRepeatedToken = errors.New("pager: page token repeated")

// Page is one decoded page of a list endpoint.
type Page[T any] struct {
	Items         []T
	NextPageToken string

	// Skipped counts items of this page dropped as malformed by the decoder.
	Skipped int
}

// FetchFunc fetches the page identified by token; the empty token is the first page.
type FetchFunc[T any] func(ctx context.Context, token string) (Page[T], error)

// Stats describes a completed (or aborted) collection.
type Stats struct {
	Pages   int
	Skipped int
}

// Collect calls fetch until a page carries no next token and returns the
// concatenation of all items in API order. On error the items collected so
// far are returned alongside it.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, Stats, error) {
	items := make([]T, 0)
	var stats Stats
	seen := make(map[string]struct{})
	token := ""

	for {
		if err := ctx.Err(); err != nil {
			return items, stats, err
		}

		page, err := fetch(ctx, token)
		if err != nil {
			return items, stats, err
		}
		stats.Pages++
		stats.Skipped += page.Skipped
		items = append(items, page.Items...)

		if page.NextPageToken == "" {
			return items, stats, nil
		}
		seen[token] = struct{}{}
		if _, dup := seen[page.NextPageToken]; dup {
			return items, stats, fmt.Errorf("%w: %q", ErrRepeatedToken, page.NextPageToken)
		}
		token = page.NextPageToken
	}
}
