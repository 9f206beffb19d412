package middlewares

import (
	"net/http"
)

// DefaultMaxRequestSize fits a scanned clipping plus its form fields
const DefaultMaxRequestSize = 25 * 1024 * 1024

// RequestSizeLimitMiddleware rejects bodies declared larger than limit bytes
// and caps the reader of bodies with unknown length
func RequestSizeLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Body == nil || r.Body == http.NoBody:
			case r.ContentLength > limit:
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			default:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
