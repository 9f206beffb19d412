package middlewares

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error body used by every handler, {"error": message}
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
