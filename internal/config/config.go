package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jobsearch-engine/internal/scrape/backoff"
	"jobsearch-engine/internal/scrape/ratelimit"
	"jobsearch-engine/internal/scrape/types"
)

type SiteRate struct {
	MaxPerMinute    int     `yaml:"max_per_minute"`
	MaxPerHour      int     `yaml:"max_per_hour"`
	MinDelaySeconds float64 `yaml:"min_delay_seconds"`
}

type Backoff struct {
	MaxRetries          int     `yaml:"max_retries"`
	InitialDelaySeconds float64 `yaml:"initial_delay_seconds"`
	MaxDelaySeconds     float64 `yaml:"max_delay_seconds"`
	ExponentialBase     float64 `yaml:"exponential_base"`
	Jitter              bool    `yaml:"jitter"`
}

// Search is a saved query the background poller runs on a schedule.
type Search struct {
	SearchTerm    string   `yaml:"search_term"`
	Location      string   `yaml:"location"`
	Sites         []string `yaml:"sites"`
	ResultsWanted int      `yaml:"results_wanted"`
	HoursOld      int      `yaml:"hours_old"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		DefaultSites      []string            `yaml:"default_sites"`
		ResultsWanted     int                 `yaml:"results_wanted"`
		HoursOld          int                 `yaml:"hours_old"`
		BatchSize         int                 `yaml:"batch_size"`
		BatchPauseSeconds float64             `yaml:"batch_pause_seconds"`
		Backoff           Backoff             `yaml:"backoff"`
		Sites             map[string]SiteRate `yaml:"sites"`
	} `yaml:"scrape"`

	Polling struct {
		SearchSeconds int `yaml:"search_seconds"`
	} `yaml:"polling"`

	Searches []Search `yaml:"searches"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default is the config written on first run.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Scrape.DefaultSites = []string{"indeed", "linkedin"}
	cfg.Scrape.ResultsWanted = 10
	cfg.Scrape.HoursOld = 72
	cfg.Scrape.BatchSize = 3
	cfg.Scrape.BatchPauseSeconds = 2
	cfg.Scrape.Backoff = Backoff{
		MaxRetries:          3,
		InitialDelaySeconds: 1,
		MaxDelaySeconds:     60,
		ExponentialBase:     2.0,
		Jitter:              true,
	}
	cfg.Scrape.Sites = map[string]SiteRate{}
	for site, p := range ratelimit.DefaultPolicies() {
		cfg.Scrape.Sites[string(site)] = SiteRate{
			MaxPerMinute:    p.MaxPerMinute,
			MaxPerHour:      p.MaxPerHour,
			MinDelaySeconds: p.MinDelay.Seconds(),
		}
	}
	cfg.Polling.SearchSeconds = 900
	return cfg
}

// RatePolicies converts the yaml site table into limiter policies.
// Unlisted sites fall back to the built-in defaults at the limiter;
// entries for unknown sites are dropped (validation warns about them).
func (c Config) RatePolicies() map[types.Site]ratelimit.Policy {
	out := map[types.Site]ratelimit.Policy{}
	for name, r := range c.Scrape.Sites {
		if !types.Known(types.Site(name)) {
			continue
		}
		out[types.Site(name)] = ratelimit.Policy{
			MaxPerMinute: r.MaxPerMinute,
			MaxPerHour:   r.MaxPerHour,
			MinDelay:     secondsDur(r.MinDelaySeconds),
		}
	}
	return out
}

func (c Config) BackoffPolicy() backoff.Policy {
	b := c.Scrape.Backoff
	return backoff.Policy{
		MaxRetries:      b.MaxRetries,
		InitialDelay:    secondsDur(b.InitialDelaySeconds),
		MaxDelay:        secondsDur(b.MaxDelaySeconds),
		ExponentialBase: b.ExponentialBase,
		Jitter:          b.Jitter,
	}
}

func (c Config) BatchPause() time.Duration {
	return secondsDur(c.Scrape.BatchPauseSeconds)
}

func secondsDur(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
