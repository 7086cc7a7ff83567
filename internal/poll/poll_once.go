package poll

import (
	"context"
	"database/sql"
	"log"
	"time"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/store"
)

// BatchSearcher runs queries in rate-limited batches. Satisfied by the
// scrape orchestrator.
type BatchSearcher interface {
	FetchBatches(ctx context.Context, queries []types.Query, batchSize int) []types.Outcome
}

type Runner struct {
	Searcher BatchSearcher
}

// RunOnce executes every saved search and persists what came back.
// Fallback outcomes are skipped: placeholders don't belong in the DB.
func (r Runner) RunOnce(db *sql.DB, cfg config.Config, onNewJob func()) (added int, err error) {
	queries := buildQueries(cfg)
	if len(queries) == 0 {
		log.Printf("[poll] level=info msg=\"no saved searches\"")
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	outcomes := r.Searcher.FetchBatches(ctx, queries, cfg.Scrape.BatchSize)

	for _, oc := range outcomes {
		if oc.Err != nil {
			log.Printf("[poll] level=warn msg=\"site failed\" site=%s err=%v", oc.Site, oc.Err)
		}
		if oc.Fallback {
			continue
		}
		for _, l := range oc.Listings {
			isNew, ierr := store.InsertListingIfNew(db, l)
			if ierr != nil {
				log.Printf("[poll] level=warn msg=\"persist listing\" site=%s err=%v", oc.Site, ierr)
				continue
			}
			if isNew {
				added++
				if onNewJob != nil {
					onNewJob()
				}
			}
		}
	}

	if deleted, derr := store.CleanupOldJobs(db); derr != nil {
		log.Printf("[poll] level=warn msg=\"cleanup old jobs\" err=%v", derr)
	} else if deleted > 0 {
		log.Printf("[poll] level=info msg=\"cleanup old jobs\" deleted=%d", deleted)
	}

	log.Printf("[poll] level=info msg=\"run complete\" queries=%d added=%d", len(queries), added)
	return added, nil
}

// buildQueries expands every saved search into one query per site,
// filling blanks from the scrape defaults.
func buildQueries(cfg config.Config) []types.Query {
	var out []types.Query
	for _, s := range cfg.Searches {
		sites := s.Sites
		if len(sites) == 0 {
			sites = cfg.Scrape.DefaultSites
		}
		wanted := s.ResultsWanted
		if wanted == 0 {
			wanted = cfg.Scrape.ResultsWanted
		}
		hours := s.HoursOld
		if hours == 0 {
			hours = cfg.Scrape.HoursOld
		}
		for _, site := range sites {
			out = append(out, types.Query{
				Site:          types.Site(site),
				SearchTerm:    s.SearchTerm,
				Location:      s.Location,
				ResultsWanted: wanted,
				MaxAgeHours:   hours,
			})
		}
	}
	return out
}
