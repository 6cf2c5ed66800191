package middleware

import (
	"net/http"
	"time"

	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging emits one structured line per request with method, path, status,
// duration, and byte count.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(recorder, r)

			if logg == nil {
				return
			}

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}

			ctx := logg.WithFields(r.Context(), map[string]any{
				"method":      r.Method,
				"path":        logger.Sanitize(r.URL.Path),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       recorder.bytes,
				"remote_addr": r.RemoteAddr,
			})
			logg.Info(ctx, "request.completed")
		})
	}
}
