package httpapi

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v without setting a status, for handlers that already
// wrote headers. Most handlers go through WriteJSON instead.
func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// methodMux dispatches on the HTTP method and answers 405 for anything
// not in the map.
func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
