package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies at 16 KiB. The largest legal
// payload here is a todo with a 200-character title and a 1000-character
// description, so even fully multibyte JSON fits with a wide margin.
const DefaultMaxBodyBytes = 16 << 10

// MaxBytes limits the request body size. Requests declaring a larger
// Content-Length are rejected up front with a 413 JSON body; bodies without a
// declared length are capped by MaxBytesReader, which makes the handler's
// JSON decode fail once the limit is crossed.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
