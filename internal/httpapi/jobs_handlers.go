package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobsearch-engine/internal/rank"
	"jobsearch-engine/internal/store"
)

type JobsHandler struct {
	DB     *sql.DB
	Scorer rank.Scorer
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	jobs, err := store.ListJobs(r.Context(), h.DB, store.ListJobsOpts{
		Limit:    limit,
		Offset:   offset,
		Company:  q.Get("company"),
		Location: q.Get("location"),
		Site:     q.Get("site"),
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	writeJSON(w, jobs)
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	job, err := store.GetJob(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, job)
}

type matchRequest struct {
	JobID    int64 `json:"job_id"`
	ResumeID int64 `json:"resume_id"`
}

// Match scores one stored job against one stored resume.
func (h JobsHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}

	job, err := store.GetJob(r.Context(), h.DB, req.JobID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}

	resume, err := store.GetResume(r.Context(), h.DB, req.ResumeID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "resume not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}

	score, matched := h.Scorer.Score(job, resume)
	if matched == nil {
		matched = []string{}
	}
	writeJSON(w, map[string]any{
		"job_id":         job.ID,
		"resume_id":      resume.ID,
		"match_score":    score,
		"matched_skills": matched,
	})
}
