package httpapi

import (
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/scrape/types"
)

// RateReporter exposes how many permits each site's sliding windows have
// handed out. Satisfied by the orchestrator's limiter.
type RateReporter interface {
	Grants(site types.Site) (minute, hour int)
}

type WindowUsage struct {
	Minute int `json:"minute"`
	Hour   int `json:"hour"`
}

type scrapeStatusResponse struct {
	types.ScrapeStatus
	Rate map[string]WindowUsage `json:"rate,omitempty"`
}

type ScrapeHandler struct {
	DB           *sql.DB
	CfgVal       *atomic.Value // config.Config
	ScrapeStatus *atomic.Value // types.ScrapeStatus
	Hub          *events.Hub
	Limiter      RateReporter
	RunSearches  func(db *sql.DB, cfg config.Config, onNewJob func()) (added int, err error)
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := scrapeStatusResponse{
		ScrapeStatus: h.ScrapeStatus.Load().(types.ScrapeStatus),
	}
	if h.Limiter != nil {
		resp.Rate = make(map[string]WindowUsage, len(types.AllSites()))
		for _, site := range types.AllSites() {
			m, hr := h.Limiter.Grants(site)
			resp.Rate[string(site)] = WindowUsage{Minute: m, Hour: hr}
		}
	}
	writeJSON(w, resp)
}

func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.ScrapeStatus.Load().(types.ScrapeStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.ScrapeStatus.Store(types.ScrapeStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastError: "",
		LastAdded: 0,
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		added, err := h.RunSearches(h.DB, cfg, func() {
			h.Hub.Publish(events.MakeEvent("", events.TypeJobCreated, 1, nil))
		})

		now := time.Now().Format(time.RFC3339)
		next := h.ScrapeStatus.Load().(types.ScrapeStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastAdded = added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.ScrapeStatus.Store(next)

		h.Hub.Publish(events.MakeEvent("", events.TypeScrapeStatus, 1, next))
	}()

	writeJSON(w, map[string]any{"ok": true})
}
