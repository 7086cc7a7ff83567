package config

import (
	"fmt"
	"strings"

	"jobsearch-engine/internal/scrape/types"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned-up copy plus everything wrong
// or suspicious about it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimSites := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scrape.DefaultSites = trimSites(out.Scrape.DefaultSites)
	for i := range out.Searches {
		out.Searches[i].Sites = trimSites(out.Searches[i].Sites)
		out.Searches[i].SearchTerm = strings.TrimSpace(out.Searches[i].SearchTerm)
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Scrape.ResultsWanted < 1 || out.Scrape.ResultsWanted > 100 {
		res.addErr("scrape.results_wanted must be 1..100")
	}
	if out.Scrape.HoursOld < 1 || out.Scrape.HoursOld > 720 {
		res.addErr("scrape.hours_old must be 1..720")
	}
	if out.Scrape.BatchSize < 0 {
		res.addErr("scrape.batch_size must be >= 0")
	}
	if out.Scrape.BatchPauseSeconds < 0 {
		res.addErr("scrape.batch_pause_seconds must be >= 0")
	}

	for _, s := range out.Scrape.DefaultSites {
		if !types.Known(types.Site(s)) {
			res.addErr("scrape.default_sites: unknown site %q", s)
		}
	}
	if len(out.Scrape.DefaultSites) == 0 {
		res.addWarn("scrape.default_sites is empty; searches without explicit sites will fail.")
	}

	for name, r := range out.Scrape.Sites {
		if !types.Known(types.Site(name)) {
			res.addWarn("scrape.sites.%s: unknown site, entry ignored", name)
		}
		if r.MaxPerMinute <= 0 {
			res.addErr("scrape.sites.%s.max_per_minute must be > 0", name)
		}
		if r.MaxPerHour <= 0 {
			res.addErr("scrape.sites.%s.max_per_hour must be > 0", name)
		}
		if r.MaxPerHour < r.MaxPerMinute {
			res.addWarn("scrape.sites.%s: max_per_hour below max_per_minute makes the hour window the only effective cap", name)
		}
		if r.MinDelaySeconds < 0 {
			res.addErr("scrape.sites.%s.min_delay_seconds must be >= 0", name)
		} else if r.MinDelaySeconds < 0.5 {
			res.addWarn("scrape.sites.%s.min_delay_seconds is very low (%.2f) and may trip board anti-bot limits.", name, r.MinDelaySeconds)
		}
	}

	b := out.Scrape.Backoff
	if b.MaxRetries < 0 {
		res.addErr("scrape.backoff.max_retries must be >= 0")
	}
	if b.InitialDelaySeconds < 0 {
		res.addErr("scrape.backoff.initial_delay_seconds must be >= 0")
	}
	if b.MaxDelaySeconds > 0 && b.MaxDelaySeconds < b.InitialDelaySeconds {
		res.addErr("scrape.backoff.max_delay_seconds must be >= initial_delay_seconds")
	}
	if b.ExponentialBase != 0 && b.ExponentialBase < 1 {
		res.addErr("scrape.backoff.exponential_base must be >= 1")
	}

	if out.Polling.SearchSeconds < 0 {
		res.addErr("polling.search_seconds must be >= 0 (0 disables the poller)")
	} else if out.Polling.SearchSeconds > 0 && out.Polling.SearchSeconds < 60 {
		res.addWarn("polling.search_seconds is very low (%d) and may cause rate limits.", out.Polling.SearchSeconds)
	}

	for i, s := range out.Searches {
		if s.SearchTerm == "" {
			res.addErr("searches[%d].search_term is required", i)
		}
		for _, site := range s.Sites {
			if !types.Known(types.Site(site)) {
				res.addErr("searches[%d]: unknown site %q", i, site)
			}
		}
		if s.ResultsWanted < 0 || s.ResultsWanted > 100 {
			res.addErr("searches[%d].results_wanted must be 0..100 (0 uses the default)", i)
		}
	}

	return out, res
}
