// Package enrich drives the resumable enrichment pipeline: load the cache,
// work out which ids still need a lookup, fetch them one at a time, and
// persist each result before moving on.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/internal/core/logging"
	"github.com/hay-kot/commentrank/internal/store/cachelog"
)

// Store is the durable cache the driver reads once and appends to.
type Store interface {
	Load(ctx context.Context) (*cachelog.State, cachelog.LoadReport)
	Append(rec comment.Record) error
}

// Options controls driver policy.
type Options struct {
	// RetryNotFound refetches ids whose cached record is the not-found
	// sentinel, once per run.
	RetryNotFound bool
	// StopOnQuota stops calling the API after the first quota error. The
	// remaining ids are reported as skipped.
	StopOnQuota bool
	// Observer receives progress. Nil disables progress reporting.
	Observer Observer
}

// Driver runs the pipeline. It owns the cache state for the duration of
// Run and is the only writer to the store.
type Driver struct {
	store   Store
	fetcher comment.Fetcher
	opts    Options
	log     zerolog.Logger
}

// New creates a driver.
func New(store Store, fetcher comment.Fetcher, opts Options, logger zerolog.Logger) *Driver {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Driver{
		store:   store,
		fetcher: fetcher,
		opts:    opts,
		log:     logger,
	}
}

// Run processes ids in order and returns the per-position outcomes together
// with the final cache state.
//
// Ids present in the cache when Run starts are never fetched. Each fetched
// result is appended to the store before the next id is attempted, so
// stopping at any point loses at most the in-flight id. A fetch failure is
// recorded and the loop continues. Run returns an error only when the
// store rejects a write for reasons other than encoding, or when ctx is
// cancelled; the summary and state are valid in both cases.
func (d *Driver) Run(ctx context.Context, ids []string) (Summary, *cachelog.State, error) {
	state, report := d.store.Load(ctx)
	d.log.Info().Ctx(ctx).
		Int("cached", report.Records).
		Int("malformed", report.Malformed).
		Int("requested", len(ids)).
		Msg("cache loaded")

	summary := Summary{
		Total:    len(ids),
		Outcomes: make([]Outcome, len(ids)),
	}

	// Sentinels are only retried on their first occurrence in the input.
	retry := map[string]bool{}
	unique := map[string]bool{}
	var work []int
	for i, id := range ids {
		unique[id] = true

		rec, cached := state.Get(id)
		if cached && d.opts.RetryNotFound && rec.IsNotFound() {
			if _, seen := retry[id]; !seen {
				retry[id] = true
				work = append(work, i)
				continue
			}
		}

		if cached {
			summary.Outcomes[i] = Outcome{ID: id, Status: StatusCached}
			summary.count(StatusCached)
			continue
		}
		work = append(work, i)
	}
	summary.Unique = len(unique)

	d.log.Info().Ctx(ctx).
		Int("to_fetch", len(work)).
		Int("already_cached", summary.Cached).
		Msg("starting fetch loop")
	d.opts.Observer.Started(len(ids), summary.Cached)

	var quotaErr error
	for n, i := range work {
		id := ids[i]

		if err := ctx.Err(); err != nil {
			d.markPending(&summary, ids, work[n:])
			return summary, state, err
		}

		retrying := retry[id]
		delete(retry, id)

		var out Outcome
		switch {
		case !retrying && state.Has(id):
			// Duplicate of an id persisted earlier in this run.
			out = Outcome{ID: id, Status: StatusCached}
		case quotaErr != nil:
			out = Outcome{ID: id, Status: StatusSkipped, Err: quotaErr}
		default:
			var err error
			out, err = d.process(ctx, state, id)
			if err != nil {
				d.markPending(&summary, ids, work[n:])
				return summary, state, err
			}
		}

		if out.Status == StatusPending {
			d.markPending(&summary, ids, work[n:])
			return summary, state, ctx.Err()
		}

		if d.opts.StopOnQuota && quotaErr == nil && errors.Is(out.Err, comment.ErrQuotaExceeded) {
			quotaErr = out.Err
			d.log.Error().Ctx(ctx).Err(out.Err).
				Int("remaining", len(work)-n-1).
				Msg("api quota exhausted, skipping remaining comments until the next run")
		}

		summary.Outcomes[i] = out
		summary.count(out.Status)
		d.opts.Observer.Processed(out)
	}

	d.log.Info().Ctx(ctx).
		Int("fetched", summary.Fetched).
		Int("not_found", summary.NotFound).
		Int("skipped", summary.Skipped).
		Msg("fetch loop finished")

	return summary, state, nil
}

// process fetches and persists one id. The returned error is non-nil only
// when the store failed in a way that makes further writes pointless.
func (d *Driver) process(ctx context.Context, state *cachelog.State, id string) (Outcome, error) {
	idCtx := logging.WithCommentID(ctx, id)

	rec, err := d.fetcher.Fetch(idCtx, id)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{ID: id, Status: StatusPending, Err: err}, nil
		}
		d.log.Warn().Ctx(idCtx).Err(err).Msg("error processing comment, will retry next run")
		return Outcome{ID: id, Status: StatusSkipped, Err: err}, nil
	}
	rec.ID = id

	if err := d.store.Append(rec); err != nil {
		if errors.Is(err, cachelog.ErrUnencodable) {
			d.log.Warn().Ctx(idCtx).Err(err).Msg("comment cannot be cached, skipping")
			return Outcome{ID: id, Status: StatusSkipped, Err: err}, nil
		}
		return Outcome{}, fmt.Errorf("persist comment %s: %w", id, err)
	}

	rec = cachelog.AsLoaded(rec)
	state.Put(rec)

	if rec.IsNotFound() {
		d.log.Debug().Ctx(idCtx).Msg("comment not found, cached sentinel")
		return Outcome{ID: id, Status: StatusNotFound}, nil
	}

	d.log.Debug().Ctx(idCtx).Int64("like_count", rec.LikeCount).Msg("comment fetched")
	return Outcome{ID: id, Status: StatusFetched}, nil
}

func (d *Driver) markPending(summary *Summary, ids []string, positions []int) {
	for _, i := range positions {
		summary.Outcomes[i] = Outcome{ID: ids[i], Status: StatusPending}
		summary.count(StatusPending)
	}
}
