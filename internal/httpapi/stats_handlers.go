package httpapi

import (
	"database/sql"
	"net/http"

	"jobsearch-engine/internal/store"
)

type StatsHandler struct {
	DB *sql.DB
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	writeJSON(w, s)
}
