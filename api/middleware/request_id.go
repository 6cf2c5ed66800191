package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID accepts a caller-supplied X-Request-Id or generates one, echoes
// it back on the response, and binds it to the request's log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := logger.Sanitize(r.Header.Get(requestIDHeader))
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), ctxRequestID, requestID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, requestID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
