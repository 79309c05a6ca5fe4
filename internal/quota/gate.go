// Package quota paces requests against the daily YouTube Data API quota.
//
// A single Gate is shared by every worker of a run. Each HTTP attempt acquires
// it once, which both spaces requests out and counts the units consumed.
package quota

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// DailyUnits is the default daily quota of a Google Cloud project.
const DailyUnits = 10000

// Gate is a token bucket plus a counter of consumed units.
type Gate struct {
	limiter *rate.Limiter
	used    atomic.Int64
}

// NewGate allows perSecond requests per second with the given burst.
// A non-positive perSecond disables pacing but still counts units.
func NewGate(perSecond float64, burst int) *Gate {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Gate{limiter: rate.NewLimiter(limit, burst)}
}

// Acquire blocks until a request may be issued. It fails without consuming a
// unit once ctx is done, which is how an interrupted run stops issuing requests.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("quota gate: %w", err)
	}
	g.used.Add(1)
	return nil
}

// Used returns the number of units consumed so far.
func (g *Gate) Used() int64 {
	return g.used.Load()
}
