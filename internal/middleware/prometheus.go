package middleware

import (
	"net/http"
	"time"

	"github.com/dverney/todo-api/internal/metrics"
)

// unmeteredPaths are hit by scrapers and orchestrator probes, not users;
// recording them would drown the todo and auth traffic the metrics exist for.
var unmeteredPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/ready":   true,
}

// Prometheus records duration and count for each user-facing request, with
// numeric todo ids collapsed into a {id} label by metrics.NormalizePath.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		if unmeteredPaths[path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		statusW := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(statusW, r)
		metrics.RecordRequest(r.Method, path, statusW.status, time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
