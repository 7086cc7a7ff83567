package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/store"
)

type ApplicationsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

type createApplicationReq struct {
	JobID    int64  `json:"job_id"`
	ResumeID *int64 `json:"resume_id"`
	Status   string `json:"status"`
}

func (h ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createApplicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}
	if req.JobID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_job_id", "job_id is required")
		return
	}

	app, err := store.CreateApplication(r.Context(), h.DB, req.JobID, req.ResumeID, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "create_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationUpdated, 1, map[string]any{
		"id": app.ID, "status": app.Status,
	}))
	WriteJSON(w, http.StatusCreated, app)
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := store.ListApplications(r.Context(), h.DB, r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if apps == nil {
		apps = []store.Application{}
	}
	writeJSON(w, apps)
}

type patchApplicationReq struct {
	Status     *string  `json:"status"`
	Notes      *string  `json:"notes"`
	MatchScore *float64 `json:"match_score"`
}

func (h ApplicationsHandler) PatchByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/applications/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var req patchApplicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}

	app, err := store.UpdateApplication(r.Context(), h.DB, id, store.ApplicationUpdate{
		Status:     req.Status,
		Notes:      req.Notes,
		MatchScore: req.MatchScore,
	})
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "application not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "update_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationUpdated, 1, map[string]any{
		"id": app.ID, "status": app.Status,
	}))
	writeJSON(w, app)
}
