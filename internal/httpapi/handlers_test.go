package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/scrape"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/store"
)

type stubSearcher struct {
	outcomes map[types.Site]types.Outcome
	err      error
	gotSites []types.Site
}

func (s *stubSearcher) FetchSites(ctx context.Context, sites []types.Site, searchTerm, location string, resultsWanted, maxAgeHours int) (map[types.Site]types.Outcome, error) {
	s.gotSites = sites
	return s.outcomes, s.err
}

func newTestEnv(t *testing.T) (*httptest.Server, *store.DB, *stubSearcher) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	searcher := &stubSearcher{outcomes: map[types.Site]types.Outcome{}}

	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Default())
	statusVal := &atomic.Value{}
	statusVal.Store(types.ScrapeStatus{})

	mux := NewMux(Deps{
		DB:           db.Pool,
		Hub:          events.NewHub(),
		Searcher:     searcher,
		Limiter:      stubReporter{},
		CfgVal:       cfgVal,
		ScrapeStatus: statusVal,
	})
	srv := httptest.NewServer(Chain(mux, RequestID, Recover))
	t.Cleanup(srv.Close)
	return srv, db, searcher
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestEnv(t)
	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	body := decodeBody[map[string]any](t, res)
	assert.Equal(t, true, body["ok"])
}

func TestSearchValidation(t *testing.T) {
	srv, _, _ := newTestEnv(t)

	cases := []struct {
		name string
		req  searchRequest
	}{
		{"missing search_term", searchRequest{Location: "Remote"}},
		{"unknown site", searchRequest{SearchTerm: "x", Sites: []string{"monster"}}},
		{"results_wanted too high", searchRequest{SearchTerm: "x", ResultsWanted: 500}},
		{"hours_old too high", searchRequest{SearchTerm: "x", HoursOld: 9999}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := postJSON(t, srv.URL+"/api/jobs/search", tc.req)
			defer res.Body.Close()
			assert.Equal(t, 400, res.StatusCode)
		})
	}
}

func TestSearchFanOutPersistsAndReports(t *testing.T) {
	srv, db, searcher := newTestEnv(t)

	real := types.Outcome{
		Site: types.SiteIndeed,
		Listings: []domain.Listing{
			{Title: "Go Engineer", Company: "Initech", URL: "https://x.example/1", Site: "indeed", Source: "indeed"},
		},
	}
	failed := types.Outcome{
		Site:     types.SiteLinkedIn,
		Listings: scrape.FallbackListings("linkedin"),
		Fallback: true,
		Err:      errors.New("blocked"),
	}
	searcher.outcomes = map[types.Site]types.Outcome{
		types.SiteIndeed:   real,
		types.SiteLinkedIn: failed,
	}

	res := postJSON(t, srv.URL+"/api/jobs/search", searchRequest{SearchTerm: "go engineer"})
	require.Equal(t, 200, res.StatusCode)
	body := decodeBody[searchResponse](t, res)

	// default sites from config
	assert.ElementsMatch(t, []types.Site{types.SiteIndeed, types.SiteLinkedIn}, searcher.gotSites)

	assert.True(t, body.Success)
	assert.Equal(t, 3, body.TotalJobs)
	require.Contains(t, body.Results, "indeed")
	require.Contains(t, body.Results, "linkedin")
	assert.False(t, body.Results["indeed"].Fallback)
	assert.True(t, body.Results["linkedin"].Fallback)
	assert.Equal(t, "blocked", body.Results["linkedin"].Error)
	assert.Equal(t, 2, body.Results["linkedin"].Count)

	// only the real listing is persisted
	jobs, err := store.ListJobs(context.Background(), db.Pool, store.ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Engineer", jobs[0].Title)
}

func TestJobsListAndGet(t *testing.T) {
	srv, db, _ := newTestEnv(t)

	_, err := store.InsertListingIfNew(db.Pool, domain.Listing{
		Title: "SRE", Company: "Globex", URL: "https://x.example/2", Site: "indeed", Source: "indeed",
	})
	require.NoError(t, err)

	res, err := http.Get(srv.URL + "/api/jobs?company=glob")
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	jobs := decodeBody[[]store.Job](t, res)
	require.Len(t, jobs, 1)

	res, err = http.Get(srv.URL + "/api/jobs/" + jsonNumber(jobs[0].ID))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/api/jobs/99999")
	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/api/jobs/abc")
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
	res.Body.Close()
}

func TestApplicationsFlow(t *testing.T) {
	srv, db, _ := newTestEnv(t)

	_, err := store.InsertListingIfNew(db.Pool, domain.Listing{
		Title: "PM", Company: "Acme", URL: "https://x.example/3", Site: "indeed", Source: "indeed",
	})
	require.NoError(t, err)
	jobs, _ := store.ListJobs(context.Background(), db.Pool, store.ListJobsOpts{})
	jobID := jobs[0].ID

	res := postJSON(t, srv.URL+"/api/applications", map[string]any{"job_id": jobID})
	require.Equal(t, 201, res.StatusCode)
	app := decodeBody[store.Application](t, res)
	assert.Equal(t, "saved", app.Status)

	// PATCH status
	b, _ := json.Marshal(map[string]any{"status": "applied", "notes": "sent"})
	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/api/applications/"+jsonNumber(app.ID), bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	pres, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, 200, pres.StatusCode)
	updated := decodeBody[store.Application](t, pres)
	assert.Equal(t, "applied", updated.Status)

	// missing job
	res = postJSON(t, srv.URL+"/api/applications", map[string]any{"job_id": 424242})
	defer res.Body.Close()
	assert.Equal(t, 404, res.StatusCode)
}

func TestResumesAndMatch(t *testing.T) {
	srv, db, _ := newTestEnv(t)

	res := postJSON(t, srv.URL+"/api/resumes", map[string]any{
		"name": "main", "skills": []string{"go", "sql"},
	})
	require.Equal(t, 201, res.StatusCode)
	resume := decodeBody[store.Resume](t, res)

	_, err := store.InsertListingIfNew(db.Pool, domain.Listing{
		Title: "Go Developer", Description: "go and sql services",
		URL: "https://x.example/4", Site: "indeed", Source: "indeed",
	})
	require.NoError(t, err)
	jobs, _ := store.ListJobs(context.Background(), db.Pool, store.ListJobsOpts{})

	res = postJSON(t, srv.URL+"/api/jobs/match", map[string]any{
		"job_id": jobs[0].ID, "resume_id": resume.ID,
	})
	require.Equal(t, 200, res.StatusCode)
	body := decodeBody[map[string]any](t, res)
	assert.Equal(t, 1.0, body["match_score"])
}

func TestStatsEndpoint(t *testing.T) {
	srv, db, _ := newTestEnv(t)

	_, err := store.InsertListingIfNew(db.Pool, domain.Listing{
		Title: "X", URL: "https://x.example/5", Site: "google", Source: "google",
	})
	require.NoError(t, err)

	res, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	s := decodeBody[store.Stats](t, res)
	assert.Equal(t, 1, s.TotalJobs)
	assert.Equal(t, 1, s.JobsBySite["google"])
}

type stubReporter struct{}

func (stubReporter) Grants(types.Site) (int, int) { return 2, 5 }

func TestScrapeStatusReportsWindowUsage(t *testing.T) {
	srv, _, _ := newTestEnv(t)

	res, err := http.Get(srv.URL + "/scrape/status")
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)

	body := decodeBody[scrapeStatusResponse](t, res)
	assert.False(t, body.Running)
	require.Len(t, body.Rate, len(types.AllSites()))
	assert.Equal(t, WindowUsage{Minute: 2, Hour: 5}, body.Rate["indeed"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestEnv(t)
	res, err := http.Get(srv.URL + "/api/jobs/search")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
