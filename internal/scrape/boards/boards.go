// Package boards is the HTTP implementation of the scrape fetcher: it knows
// how to turn a Query into a search request against each supported job board
// and parse the response into listings. The orchestrator owns retries and
// per-site budgets; this package only fetches and parses.
package boards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

type Config struct {
	// Bases overrides the per-site endpoint roots (tests point these at
	// httptest servers). Missing entries use the real boards.
	Bases map[types.Site]string

	// APIKey looks up a credential for API-backed boards. Nil or an empty
	// return means the request goes out unauthenticated.
	APIKey func(site types.Site) string
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

var defaultBases = map[types.Site]string{
	types.SiteIndeed:       "https://www.indeed.com",
	types.SiteLinkedIn:     "https://www.linkedin.com",
	types.SiteZipRecruiter: "https://api.ziprecruiter.com",
	types.SiteGlassdoor:    "https://www.glassdoor.com",
	types.SiteGoogle:       "https://www.google.com",
}

func (c *Client) base(site types.Site) string {
	if b, ok := c.cfg.Bases[site]; ok && b != "" {
		return b
	}
	return defaultBases[site]
}

// Fetch satisfies types.Fetcher.
func (c *Client) Fetch(ctx context.Context, q types.Query) ([]domain.Listing, error) {
	if !types.Known(q.Site) {
		return nil, fmt.Errorf("no board adapter for site %q", q.Site)
	}

	var (
		listings []domain.Listing
		err      error
	)
	if q.Site == types.SiteZipRecruiter {
		listings, err = c.fetchZipRecruiter(ctx, q)
	} else {
		listings, err = c.fetchHTML(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	listings = filterByAge(listings, q.MaxAgeHours)
	if q.ResultsWanted > 0 && len(listings) > q.ResultsWanted {
		listings = listings[:q.ResultsWanted]
	}
	for i := range listings {
		listings[i].Site = string(q.Site)
		if listings[i].Source == "" {
			listings[i].Source = string(q.Site)
		}
		listings[i].URL = util.CanonicalizeURL(listings[i].URL)
	}
	return listings, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "JobSearchEngine/1.0 (+local)")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		res.Body.Close()
		return nil, fmt.Errorf("board status %d", res.StatusCode)
	}
	return res, nil
}

// zipPosting mirrors the ZipRecruiter API response shape.
type zipPosting struct {
	Name          string `json:"name"`
	HiringCompany struct {
		Name string `json:"name"`
	} `json:"hiring_company"`
	Location        string  `json:"location"`
	URL             string  `json:"url"`
	Snippet         string  `json:"snippet"`
	Category        string  `json:"category"`
	SalaryMinAnnual float64 `json:"salary_min_annual"`
	SalaryMaxAnnual float64 `json:"salary_max_annual"`
	PostedTime      string  `json:"posted_time"` // RFC3339
}

func (c *Client) fetchZipRecruiter(ctx context.Context, q types.Query) ([]domain.Listing, error) {
	v := url.Values{}
	v.Set("search", q.SearchTerm)
	v.Set("location", q.Location)
	if q.ResultsWanted > 0 {
		v.Set("jobs_per_page", strconv.Itoa(q.ResultsWanted))
	}
	apiURL := c.base(q.Site) + "/jobs?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "JobSearchEngine/1.0 (+local)")
	if c.cfg.APIKey != nil {
		if key := c.cfg.APIKey(q.Site); key != "" {
			req.Header.Set("Authorization", "Basic "+key)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zip_recruiter get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("zip_recruiter status %d", res.StatusCode)
	}

	var body struct {
		Jobs []zipPosting `json:"jobs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("zip_recruiter decode: %w", err)
	}

	out := make([]domain.Listing, 0, len(body.Jobs))
	for _, p := range body.Jobs {
		if p.Name == "" || p.URL == "" {
			continue
		}
		l := domain.Listing{
			Title:       util.CleanText(p.Name),
			Company:     util.CleanText(p.HiringCompany.Name),
			Location:    util.NormalizeLocation(p.Location),
			URL:         p.URL,
			Description: p.Snippet,
			JobType:     util.InferJobType(p.Category + " " + p.Snippet),
			SalaryMin:   p.SalaryMinAnnual,
			SalaryMax:   p.SalaryMaxAnnual,
			Currency:    "USD",
		}
		if t, err := time.Parse(time.RFC3339, p.PostedTime); err == nil {
			l.PostedAt = &t
		}
		out = append(out, l)
	}
	return out, nil
}

func filterByAge(ls []domain.Listing, maxAgeHours int) []domain.Listing {
	if maxAgeHours <= 0 {
		return ls
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)
	out := ls[:0]
	for _, l := range ls {
		// keep listings without a posted date; age is best-effort
		if l.PostedAt == nil || l.PostedAt.After(cutoff) {
			out = append(out, l)
		}
	}
	return out
}
