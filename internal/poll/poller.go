package poll

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/scheduler"
	"jobsearch-engine/internal/scrape/types"
)

// StartPoller runs the saved searches on the configured interval until
// ctx ends. A zero interval disables it.
func StartPoller(ctx context.Context, db *sql.DB, cfgVal *atomic.Value, scrapeStatus *atomic.Value, hub *events.Hub, runner Runner) {
	cfg := cfgVal.Load().(config.Config)
	if cfg.Polling.SearchSeconds <= 0 {
		log.Printf("[poll] level=info msg=\"poller disabled\"")
		return
	}
	interval := time.Duration(cfg.Polling.SearchSeconds) * time.Second

	go scheduler.Every(ctx, interval, "poll", func(ctx context.Context) error {
		cfg := cfgVal.Load().(config.Config)
		if len(cfg.Searches) == 0 {
			return nil
		}

		st := loadStatus(scrapeStatus)
		if st.Running {
			return nil
		}
		st.Running = true
		st.LastRunAt = time.Now().Format(time.RFC3339)
		scrapeStatus.Store(st)

		added, err := runner.RunOnce(db, cfg, func() {
			hub.Publish(events.MakeEvent("", events.TypeJobCreated, 1, nil))
		})

		st = loadStatus(scrapeStatus)
		st.Running = false
		st.LastAdded = added
		if err != nil {
			st.LastError = err.Error()
			log.Printf("[poll] error: %v", err)
		} else {
			st.LastError = ""
			st.LastOkAt = time.Now().Format(time.RFC3339)
			log.Printf("[poll] ok added=%d", added)
		}
		scrapeStatus.Store(st)
		hub.Publish(events.MakeEvent("", events.TypeScrapeStatus, 1, st))
		return err
	})
}

func loadStatus(v *atomic.Value) types.ScrapeStatus {
	if st, ok := v.Load().(types.ScrapeStatus); ok {
		return st
	}
	return types.ScrapeStatus{}
}
