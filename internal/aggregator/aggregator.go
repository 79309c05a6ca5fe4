package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/ytcomments/internal/logger"
	"github.com/gauthierbraillon/ytcomments/internal/threads"
	"github.com/gauthierbraillon/ytcomments/internal/youtube"
)

// ErrInterrupted is returned when the run context is cancelled before every
// video was processed.
var ErrInterrupted = errors.New("run interrupted")

// Lister enumerates a channel's uploads.
type Lister interface {
	List(ctx context.Context, handle string) (youtube.Channel, []youtube.Video, error)
}

// Builder builds the comment forest of one video.
type Builder interface {
	Build(ctx context.Context, videoID string) (threads.Tree, error)
}

// QuotaCounter reports the quota units consumed so far.
type QuotaCounter interface {
	Used() int64
}

// Options configures an Aggregator.
type Options struct {
	// Workers bounds the number of videos processed at once. Values below 1 mean 1.
	Workers int
	Quota   QuotaCounter
	Logger  *logger.Logger
}

// Aggregator drives the lister once and the builder once per video.
type Aggregator struct {
	lister  Lister
	builder Builder
	opts    Options
	log     *logger.Logger
}

// New creates a new Aggregator instance.
func New(lister Lister, builder Builder, opts Options) *Aggregator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("aggregator")
	}
	return &Aggregator{lister: lister, builder: builder, opts: opts, log: log}
}

// Run harvests the comments of every upload of handle. A fatal API error
// stops the remaining work and is returned with whatever was already
// assembled. Cancellation of ctx returns ErrInterrupted.
func (a *Aggregator) Run(ctx context.Context, handle string) (Result, error) {
	log := logger.C(ctx, a.log)

	ch, videos, err := a.lister.List(ctx, handle)
	res := Result{Channel: ch, Outcomes: make([]Outcome, len(videos))}
	if err != nil {
		a.countQuota(&res)
		if ctx.Err() != nil && !youtube.IsFatal(err) {
			return res, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return res, err
	}

	for i, v := range videos {
		res.Outcomes[i] = Outcome{Video: v, Status: StatusPending}
	}
	log.Info().Int("videos", len(videos)).Int("workers", a.opts.Workers).Msg("harvesting comments")

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i := range videos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out := &res.Outcomes[i]

			tree, err := a.builder.Build(gctx, out.Video.ID)
			out.Skipped = tree.Skipped
			switch {
			case err == nil && tree.Disabled:
				out.Status = StatusCommentsDisabled
				out.Comments = []threads.TopLevelComment{}
			case err == nil:
				out.Status = StatusOK
				out.Comments = tree.Comments
			case youtube.IsFatal(err):
				out.Status = StatusFailed
				out.Err = err
				return fmt.Errorf("video %s: %w", out.Video.ID, err)
			case gctx.Err() != nil:
				// stopped by interruption or another worker's fatal error
				return nil
			default:
				out.Status = StatusFailed
				out.Err = err
				out.Comments = []threads.TopLevelComment{}
			}

			n := done.Add(1)
			ev := log.Info()
			if out.Status == StatusFailed {
				ev = log.Warn().Err(out.Err)
			}
			ev.Str("video_id", out.Video.ID).
				Str("status", string(out.Status)).
				Int("comments", len(out.Comments)).
				Msgf("video %d/%d", n, len(videos))
			return nil
		})
	}

	err = g.Wait()
	a.countQuota(&res)
	if err != nil {
		return res, err
	}
	if ctx.Err() != nil {
		return res, ErrInterrupted
	}
	return res, nil
}

func (a *Aggregator) countQuota(res *Result) {
	if a.opts.Quota != nil {
		res.QuotaUsed = a.opts.Quota.Used()
	}
}
