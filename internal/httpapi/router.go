package httpapi

import (
	"net/http"

	"jobsearch-engine/internal/rank"
)

// NewMux returns the raw mux so main() can still attach extra routes
// (shutdown needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Search fan-out
	srh := SearchHandler{DB: d.DB, Hub: d.Hub, Searcher: d.Searcher, CfgVal: d.CfgVal}
	mux.HandleFunc("/api/jobs/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: srh.Run,
	}))

	// Jobs
	jh := JobsHandler{DB: d.DB, Scorer: rank.KeywordScorer{}}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/api/jobs/match", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.Match,
	}))
	mux.HandleFunc("/api/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.GetByPath, // expects /api/jobs/{id}
	}))

	// Applications
	ah := ApplicationsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/api/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Create,
		http.MethodGet:  ah.List,
	}))
	mux.HandleFunc("/api/applications/", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: ah.PatchByPath, // expects /api/applications/{id}
	}))

	// Resumes
	rh := ResumesHandler{DB: d.DB}
	mux.HandleFunc("/api/resumes", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Create,
		http.MethodGet:  rh.List,
	}))

	// Stats
	sth := StatsHandler{DB: d.DB}
	mux.HandleFunc("/api/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sth.Get,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets
	sh := SecretsHandler{SetBoardKey: d.SetBoardKey, DeleteBoardKey: d.DeleteBoardKey}
	mux.HandleFunc("/api/secrets/boards", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetKey,
		http.MethodDelete: sh.DeleteKey,
	}))

	// Scrape
	sch := ScrapeHandler{
		DB:           d.DB,
		CfgVal:       d.CfgVal,
		ScrapeStatus: d.ScrapeStatus,
		Hub:          d.Hub,
		Limiter:      d.Limiter,
		RunSearches:  d.RunSearches,
	}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
