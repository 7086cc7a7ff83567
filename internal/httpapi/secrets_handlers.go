package httpapi

import (
	"encoding/json"
	"net/http"

	"jobsearch-engine/internal/scrape/types"
)

type SecretsHandler struct {
	SetBoardKey    func(site types.Site, key string) error
	DeleteBoardKey func(site types.Site) error
}

type setBoardKeyReq struct {
	Site   string `json:"site"`
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetKey(w http.ResponseWriter, r *http.Request) {
	var req setBoardKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.SetBoardKey(types.Site(req.Site), req.APIKey); err != nil {
		http.Error(w, "failed to store api key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	var req setBoardKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.DeleteBoardKey(types.Site(req.Site)); err != nil {
		http.Error(w, "failed to delete api key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
