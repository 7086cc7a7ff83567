package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/scrape/types"
)

// Searcher fans a query across job boards. Satisfied by the scrape
// orchestrator; injected so handler tests can stub it.
type Searcher interface {
	FetchSites(ctx context.Context, sites []types.Site, searchTerm, location string, resultsWanted, maxAgeHours int) (map[types.Site]types.Outcome, error)
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Searcher Searcher

	// Window usage for /scrape/status; the orchestrator's limiter.
	Limiter RateReporter

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores types.ScrapeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Board credentials (inject for testability)
	SetBoardKey    func(site types.Site, key string) error
	DeleteBoardKey func(site types.Site) error

	// Saved-search entrypoint for /scrape/run and the poller
	RunSearches func(db *sql.DB, cfg config.Config, onNewJob func()) (added int, err error)
}
