// Package ratelimit admits scrape requests per site using two sliding time
// windows (minute, hour) plus a minimum inter-request delay.
package ratelimit

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"jobsearch-engine/internal/scrape/types"
)

// Policy is the per-site admission budget. Immutable once the limiter owns it.
type Policy struct {
	MaxPerMinute int
	MaxPerHour   int
	MinDelay     time.Duration
}

// DefaultPolicy is applied to sites without an explicit policy, including
// unknown ones. Refusing to rate-limit an unknown site would be unsafe, so
// we limit it conservatively instead.
var DefaultPolicy = Policy{
	MaxPerMinute: 10,
	MaxPerHour:   100,
	MinDelay:     time.Second,
}

// DefaultPolicies returns the per-board budgets the engine ships with.
func DefaultPolicies() map[types.Site]Policy {
	return map[types.Site]Policy{
		types.SiteIndeed:       {MaxPerMinute: 10, MaxPerHour: 100, MinDelay: 2 * time.Second},
		types.SiteLinkedIn:     {MaxPerMinute: 5, MaxPerHour: 50, MinDelay: 3 * time.Second},
		types.SiteZipRecruiter: {MaxPerMinute: 8, MaxPerHour: 80, MinDelay: 2 * time.Second},
		types.SiteGlassdoor:    {MaxPerMinute: 6, MaxPerHour: 60, MinDelay: 2500 * time.Millisecond},
		types.SiteGoogle:       {MaxPerMinute: 10, MaxPerHour: 100, MinDelay: 1500 * time.Millisecond},
	}
}

// tracker holds one site's grant history. Mutated only under its own lock, so
// sites never serialize on each other's windows.
type tracker struct {
	mu     sync.Mutex
	minute []time.Time
	hour   []time.Time
	last   time.Time
}

// Limiter hands out scrape permits. One tracker per site, created lazily.
type Limiter struct {
	mu       sync.Mutex
	trackers map[types.Site]*tracker

	policies  map[types.Site]Policy
	jitterMax time.Duration
}

const defaultJitterMax = 500 * time.Millisecond

func NewLimiter(policies map[types.Site]Policy) *Limiter {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Limiter{
		trackers:  make(map[types.Site]*tracker),
		policies:  policies,
		jitterMax: defaultJitterMax,
	}
}

// NewLimiterWithJitter is NewLimiter with an explicit post-grant jitter
// ceiling. Tests pass 0 to keep acquires fast and deterministic.
func NewLimiterWithJitter(policies map[types.Site]Policy, jitterMax time.Duration) *Limiter {
	l := NewLimiter(policies)
	l.jitterMax = jitterMax
	return l
}

func (l *Limiter) policyFor(site types.Site) Policy {
	if p, ok := l.policies[site]; ok {
		return p
	}
	return DefaultPolicy
}

func (l *Limiter) trackerFor(site types.Site) *tracker {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.trackers[site]; ok {
		return t
	}
	t := &tracker{}
	l.trackers[site] = t
	return t
}

// Acquire blocks until the site's policy admits a request, then spaces the
// caller by MinDelay plus random jitter before returning. The pacing sleep
// is unconditional: it also serves as the gap between back-to-back grants.
// Returns early only when ctx is done.
func (l *Limiter) Acquire(ctx context.Context, site types.Site) error {
	pol := l.policyFor(site)
	tr := l.trackerFor(site)

	for {
		tr.mu.Lock()
		now := time.Now()

		tr.minute = pruneOlder(tr.minute, now.Add(-time.Minute))
		tr.hour = pruneOlder(tr.hour, now.Add(-time.Hour))

		minuteOK := len(tr.minute) < pol.MaxPerMinute
		hourOK := len(tr.hour) < pol.MaxPerHour
		delayOK := tr.last.IsZero() || now.Sub(tr.last) >= pol.MinDelay

		if minuteOK && hourOK && delayOK {
			tr.minute = append(tr.minute, now)
			tr.hour = append(tr.hour, now)
			tr.last = now
			tr.mu.Unlock()

			// Randomized spacing so request timing doesn't form a pattern.
			pace := pol.MinDelay
			if l.jitterMax > 0 {
				pace += time.Duration(rand.Int63n(int64(l.jitterMax)))
			}
			return sleep(ctx, pace)
		}

		// Earliest instant any violated constraint could clear. The loop
		// re-checks from scratch after sleeping: a concurrent pipeline on the
		// same site may have claimed the freed slot.
		wait := pol.MinDelay
		have := false
		consider := func(d time.Duration) {
			if d < 0 {
				d = 0
			}
			if !have || d < wait {
				wait = d
				have = true
			}
		}
		if !minuteOK && len(tr.minute) > 0 {
			consider(tr.minute[0].Add(time.Minute).Sub(now))
		}
		if !hourOK && len(tr.hour) > 0 {
			consider(tr.hour[0].Add(time.Hour).Sub(now))
		}
		if !delayOK {
			consider(pol.MinDelay - now.Sub(tr.last))
		}
		tr.mu.Unlock()

		log.Printf("[ratelimit] site=%s budget reached, waiting %s", site, wait.Round(time.Millisecond))
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Grants reports the current (minute, hour) window counts for a site,
// pruning stale entries first.
func (l *Limiter) Grants(site types.Site) (minute, hour int) {
	tr := l.trackerFor(site)
	tr.mu.Lock()
	defer tr.mu.Unlock()
	now := time.Now()
	tr.minute = pruneOlder(tr.minute, now.Add(-time.Minute))
	tr.hour = pruneOlder(tr.hour, now.Add(-time.Hour))
	return len(tr.minute), len(tr.hour)
}

func pruneOlder(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}

func sleep(ctx context.Context, d time.Duration) error {
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
