package types

import (
	"context"

	"jobsearch-engine/internal/domain"
)

// Site is one supported job board. Unknown values are tolerated: the rate
// limiter applies a conservative default policy rather than refusing them.
type Site string

const (
	SiteIndeed       Site = "indeed"
	SiteLinkedIn     Site = "linkedin"
	SiteZipRecruiter Site = "zip_recruiter"
	SiteGlassdoor    Site = "glassdoor"
	SiteGoogle       Site = "google"
)

// AllSites lists every supported board.
func AllSites() []Site {
	return []Site{SiteIndeed, SiteLinkedIn, SiteZipRecruiter, SiteGlassdoor, SiteGoogle}
}

// Known reports whether s is one of the supported boards.
func Known(s Site) bool {
	switch s {
	case SiteIndeed, SiteLinkedIn, SiteZipRecruiter, SiteGlassdoor, SiteGoogle:
		return true
	}
	return false
}

// Query is one scrape request against one site. Values are immutable and
// freely shared across concurrent pipelines.
type Query struct {
	Site          Site
	SearchTerm    string
	Location      string
	ResultsWanted int
	MaxAgeHours   int
}

// Outcome is the result of one site's pipeline. Fallback listings are always
// tagged so callers can tell substituted data from the real thing; Err is set
// when retries were exhausted (the fallback set is still populated then).
type Outcome struct {
	Site     Site
	Listings []domain.Listing
	Fallback bool
	Err      error
}

func (o Outcome) Count() int { return len(o.Listings) }

// Fetcher performs the actual network call for one site. Any implementation
// (HTTP scraping, a mocked adapter, a vendor SDK) satisfies this; the
// orchestrator treats every fetch error as retryable.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]domain.Listing, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, q Query) ([]domain.Listing, error)

func (f FetcherFunc) Fetch(ctx context.Context, q Query) ([]domain.Listing, error) {
	return f(ctx, q)
}

type ScrapeStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}
