package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"jobsearch-engine/internal/store"
)

type ResumesHandler struct {
	DB *sql.DB
}

type createResumeReq struct {
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Skills  []string `json:"skills"`
}

func (h ResumesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createResumeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}
	if req.Name == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_name", "name is required")
		return
	}

	resume, err := store.InsertResume(r.Context(), h.DB, req.Name, req.Content, req.Skills)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, resume)
}

func (h ResumesHandler) List(w http.ResponseWriter, r *http.Request) {
	resumes, err := store.ListResumes(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if resumes == nil {
		resumes = []store.Resume{}
	}
	writeJSON(w, resumes)
}
