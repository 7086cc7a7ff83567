// Package scrape coordinates rate-limited, fault-tolerant scraping across
// job boards: one pipeline per site, failures isolated per site, fallback
// data instead of empty hands.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobsearch-engine/internal/scrape/backoff"
	"jobsearch-engine/internal/scrape/ratelimit"
	"jobsearch-engine/internal/scrape/types"
)

// ErrNoSites is returned by FetchSites before any pipeline launches.
var ErrNoSites = errors.New("no sites requested")

const defaultBatchPause = 2 * time.Second

// Orchestrator owns the limiter, the retry policy and the fetcher. Construct
// one per process (or per test); there is no package-level instance.
type Orchestrator struct {
	limiter    *ratelimit.Limiter
	retry      *backoff.Executor
	fetcher    types.Fetcher
	batchPause time.Duration
}

// Options tune an Orchestrator. Zero fields get defaults.
type Options struct {
	Policies   map[types.Site]ratelimit.Policy
	Backoff    backoff.Policy
	BatchPause time.Duration
	JitterMax  time.Duration // post-grant pacing jitter ceiling; <0 disables
}

func New(fetcher types.Fetcher, opts Options) *Orchestrator {
	pause := opts.BatchPause
	if pause == 0 {
		pause = defaultBatchPause
	}
	var lim *ratelimit.Limiter
	switch {
	case opts.JitterMax < 0:
		lim = ratelimit.NewLimiterWithJitter(opts.Policies, 0)
	case opts.JitterMax > 0:
		lim = ratelimit.NewLimiterWithJitter(opts.Policies, opts.JitterMax)
	default:
		lim = ratelimit.NewLimiter(opts.Policies)
	}
	return &Orchestrator{
		limiter:    lim,
		retry:      backoff.NewExecutor(opts.Backoff),
		fetcher:    fetcher,
		batchPause: pause,
	}
}

// Limiter exposes the orchestrator's limiter so the API layer can report
// window usage. Callers must not bypass Acquire.
func (o *Orchestrator) Limiter() *ratelimit.Limiter { return o.limiter }

// FetchSite runs the single-site pipeline: acquire a rate-limit permit, run
// the fetch under retry, then classify. Both "retries exhausted" and "fetch
// succeeded but empty" produce the full tagged fallback set; only a genuine
// non-empty result comes back untagged.
func (o *Orchestrator) FetchSite(ctx context.Context, q types.Query) types.Outcome {
	if err := o.limiter.Acquire(ctx, q.Site); err != nil {
		return fallbackOutcome(q.Site, fmt.Errorf("rate limit wait: %w", err))
	}

	var out types.Outcome
	out.Site = q.Site

	err := o.retry.Run(ctx, func(ctx context.Context) error {
		log.Printf("[scrape:%s] fetching %d listings for %q in %q", q.Site, q.ResultsWanted, q.SearchTerm, q.Location)
		ls, ferr := o.fetcher.Fetch(ctx, q)
		if ferr != nil {
			return ferr
		}
		out.Listings = ls
		return nil
	})

	switch {
	case err != nil:
		log.Printf("[scrape:%s] failed after retries: %v; using fallback data", q.Site, err)
		return fallbackOutcome(q.Site, err)
	case len(out.Listings) == 0:
		log.Printf("[scrape:%s] no listings found; using fallback data", q.Site)
		return fallbackOutcome(q.Site, nil)
	default:
		log.Printf("[scrape:%s] got %d listings", q.Site, len(out.Listings))
		return out
	}
}

func fallbackOutcome(site types.Site, err error) types.Outcome {
	return types.Outcome{
		Site:     site,
		Listings: FallbackListings(string(site)),
		Fallback: true,
		Err:      err,
	}
}

// FetchSites fans one query out across every requested site concurrently and
// waits for all pipelines. One site's failure (or panic) never aborts the
// others; the returned map has exactly one entry per requested site. An empty
// site list is rejected before any pipeline launches.
func (o *Orchestrator) FetchSites(ctx context.Context, sites []types.Site, searchTerm, location string, resultsWanted, maxAgeHours int) (map[types.Site]types.Outcome, error) {
	if len(sites) == 0 {
		return nil, ErrNoSites
	}

	out := make(map[types.Site]types.Outcome, len(sites))
	var mu sync.Mutex

	var g errgroup.Group
	for _, site := range sites {
		site := site
		q := types.Query{
			Site:          site,
			SearchTerm:    searchTerm,
			Location:      location,
			ResultsWanted: resultsWanted,
			MaxAgeHours:   maxAgeHours,
		}

		g.Go(func() error {
			oc := o.fetchSiteIsolated(ctx, q)
			mu.Lock()
			out[site] = oc
			mu.Unlock()
			return nil // best-effort: don't cancel siblings
		})
	}
	_ = g.Wait()

	// Every pipeline stores its outcome before returning (a deadline cut
	// comes back as that site's fallback outcome), so the map holds exactly
	// one entry per requested site here.
	return out, nil
}

// fetchSiteIsolated converts a panic inside one pipeline into that site's
// failed outcome instead of letting it take down the whole fan-out.
func (o *Orchestrator) fetchSiteIsolated(ctx context.Context, q types.Query) (oc types.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[scrape:%s] pipeline panic: %v", q.Site, rec)
			oc = fallbackOutcome(q.Site, fmt.Errorf("pipeline panic: %v", rec))
		}
	}()
	return o.FetchSite(ctx, q)
}

// FetchBatches runs independent queries in consecutive chunks of at most
// batchSize, each chunk fully concurrent, with a fixed pacing delay between
// chunks (none after the last). Outcomes are returned in input order. This
// caps peak concurrency regardless of what the rate limiter admits.
func (o *Orchestrator) FetchBatches(ctx context.Context, queries []types.Query, batchSize int) []types.Outcome {
	if batchSize <= 0 {
		batchSize = 1
	}
	out := make([]types.Outcome, len(queries))

	for start := 0; start < len(queries); start += batchSize {
		end := start + batchSize
		if end > len(queries) {
			end = len(queries)
		}
		log.Printf("[scrape] batch %d: %d queries", start/batchSize+1, end-start)

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				out[i] = o.fetchSiteIsolated(ctx, queries[i])
			}()
		}
		wg.Wait()

		if end < len(queries) {
			if err := sleepCtx(ctx, o.batchPause); err != nil {
				// deadline hit between batches: remaining queries fail fast
				for i := end; i < len(queries); i++ {
					out[i] = fallbackOutcome(queries[i].Site, err)
				}
				return out
			}
		}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
