package handler

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v with the JSON content type. Encoding errors are not
// recoverable at this point since the status line is already written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
