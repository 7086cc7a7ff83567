package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/store"
)

// searchDeadline bounds one fan-out across all requested boards.
const searchDeadline = 2 * time.Minute

type SearchHandler struct {
	DB       *sql.DB
	Hub      *events.Hub
	Searcher Searcher
	CfgVal   *atomic.Value // stores config.Config
}

func (h SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	cfg := h.CfgVal.Load().(config.Config)

	if req.SearchTerm == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_search_term", "search_term is required")
		return
	}
	if len(req.Sites) == 0 {
		req.Sites = cfg.Scrape.DefaultSites
	}
	if len(req.Sites) == 0 {
		req.Sites = []string{"indeed", "linkedin"}
	}
	sites := make([]types.Site, 0, len(req.Sites))
	for _, s := range req.Sites {
		site := types.Site(s)
		if !types.Known(site) {
			WriteError(w, r, http.StatusBadRequest, "unknown_site", "unknown site: "+s)
			return
		}
		sites = append(sites, site)
	}
	if req.ResultsWanted == 0 {
		req.ResultsWanted = cfg.Scrape.ResultsWanted
	}
	if req.ResultsWanted < 1 || req.ResultsWanted > 100 {
		WriteError(w, r, http.StatusBadRequest, "invalid_results_wanted", "results_wanted must be 1..100")
		return
	}
	if req.HoursOld == 0 {
		req.HoursOld = cfg.Scrape.HoursOld
	}
	if req.HoursOld < 1 || req.HoursOld > 720 {
		WriteError(w, r, http.StatusBadRequest, "invalid_hours_old", "hours_old must be 1..720")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchDeadline)
	defer cancel()

	outcomes, err := h.Searcher.FetchSites(ctx, sites, req.SearchTerm, req.Location, req.ResultsWanted, req.HoursOld)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "search_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())

	resp := searchResponse{
		Success:   true,
		Results:   make(map[string]siteResult, len(outcomes)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	added := 0
	for site, oc := range outcomes {
		sr := siteResult{
			Count:    oc.Count(),
			Fallback: oc.Fallback,
			Jobs:     oc.Listings,
		}
		if oc.Err != nil {
			sr.Error = oc.Err.Error()
		}
		resp.Results[string(site)] = sr
		resp.TotalJobs += oc.Count()

		// fallback records are placeholders; only real listings persist
		if oc.Fallback {
			continue
		}
		for _, l := range oc.Listings {
			isNew, err := store.InsertListingIfNew(h.DB, l)
			if err != nil {
				log.Printf("[search] level=warn msg=\"persist listing\" site=%s err=%v", site, err)
				continue
			}
			if isNew {
				added++
				h.Hub.Publish(events.MakeEvent(reqID, events.TypeJobCreated, 1, map[string]any{"job_url": l.URL, "site": l.Site}))
			}
		}
	}

	h.Hub.Publish(events.MakeEvent(reqID, events.TypeSearchCompleted, 1, map[string]any{
		"search_term": req.SearchTerm,
		"total_jobs":  resp.TotalJobs,
		"new_jobs":    added,
	}))

	writeJSON(w, resp)
}
