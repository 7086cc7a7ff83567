// Package backoff computes exponential retry delays and runs fallible
// operations under a bounded retry budget.
package backoff

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// Policy configures exponential backoff. Zero values are replaced by
// Default() at executor construction.
type Policy struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool
}

func Default() Policy {
	return Policy{
		MaxRetries:      3,
		InitialDelay:    time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// DelayForAttempt returns the pause before retrying after the given attempt
// (0-indexed). Base delay grows as initial*base^attempt, clamped at MaxDelay;
// jitter adds up to 50% on top.
func (p Policy) DelayForAttempt(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= p.ExponentialBase
		if d >= float64(p.MaxDelay) {
			break
		}
	}
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter {
		d += rand.Float64() * d * 0.5
	}
	return time.Duration(d)
}

// Executor retries an operation with the policy's delays.
type Executor struct {
	pol Policy
}

func NewExecutor(pol Policy) *Executor {
	if pol.MaxRetries <= 0 {
		pol.MaxRetries = Default().MaxRetries
	}
	if pol.InitialDelay <= 0 {
		pol.InitialDelay = Default().InitialDelay
	}
	if pol.MaxDelay < pol.InitialDelay {
		pol.MaxDelay = Default().MaxDelay
	}
	if pol.ExponentialBase <= 1 {
		pol.ExponentialBase = Default().ExponentialBase
	}
	return &Executor{pol: pol}
}

func (e *Executor) Policy() Policy { return e.pol }

// Run invokes op up to MaxRetries times, sleeping DelayForAttempt(i) between
// attempts (never after the last). The first success returns immediately; on
// exhaustion the last error is returned, earlier ones are only logged.
// Callers needing the full failure history must wrap this.
func (e *Executor) Run(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt < e.pol.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err

		if attempt < e.pol.MaxRetries-1 {
			d := e.pol.DelayForAttempt(attempt)
			log.Printf("[retry] attempt %d failed: %v; retrying in %s", attempt+1, err, d.Round(time.Millisecond))
			if serr := sleep(ctx, d); serr != nil {
				return last
			}
		} else {
			log.Printf("[retry] all %d attempts failed: %v", e.pol.MaxRetries, err)
		}
	}
	return last
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
