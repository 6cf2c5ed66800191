package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/redis"
)

const idempotencyHeader = "Idempotency-Key"

type idempotencyRule struct {
	scope string
	ttl   time.Duration
}

// Route scopes and retention windows for replayable writes. Payments keep
// their record for a week; order mutations for a day.
var idempotencyRules = map[string]idempotencyRule{
	"POST /api/v1/checkout/pay":               {scope: "checkout.pay", ttl: 7 * 24 * time.Hour},
	"POST /api/v1/orders":                     {scope: "orders.create", ttl: 24 * time.Hour},
	"POST /api/v1/admin/orders/*/select-rate": {scope: "admin.select_rate", ttl: 24 * time.Hour},
	"POST /api/v1/admin/orders/*/label":       {scope: "admin.create_label", ttl: 7 * 24 * time.Hour},
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bufferingRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bufferingRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *bufferingRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a write arrives again with
// the same Idempotency-Key. The in-flight marker claims the key before the
// handler runs; the finished response replaces it under the rule's TTL.
func Idempotency(store redis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			storageKey := store.IdempotencyKey(rule.scope, logger.Sanitize(key))

			if existing, err := store.Get(r.Context(), storageKey); err == nil && existing != "" {
				var stored storedResponse
				if jsonErr := json.Unmarshal([]byte(existing), &stored); jsonErr == nil && stored.Status != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotency-Replayed", "true")
					w.WriteHeader(stored.Status)
					w.Write(stored.Body)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in flight"))
				return
			}

			claimed, err := store.SetNX(r.Context(), storageKey, "pending", rule.ttl)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable"))
				return
			}
			if !claimed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in flight"))
				return
			}

			recorder := &bufferingRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)

			if recorder.status >= http.StatusInternalServerError {
				if delErr := store.Del(r.Context(), storageKey); delErr != nil && logg != nil {
					logg.Warn(r.Context(), "failed to release idempotency key")
				}
				return
			}

			encoded, err := json.Marshal(storedResponse{Status: recorder.status, Body: recorder.body.Bytes()})
			if err != nil {
				return
			}
			// Swap the pending marker for the finished response.
			if delErr := store.Del(r.Context(), storageKey); delErr == nil {
				store.SetNX(r.Context(), storageKey, string(encoded), rule.ttl)
			}
		})
	}
}

func matchRule(r *http.Request) (idempotencyRule, bool) {
	path := r.URL.Path
	for pattern, rule := range idempotencyRules {
		parts := strings.SplitN(pattern, " ", 2)
		if parts[0] != r.Method {
			continue
		}
		if pathMatches(parts[1], path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func pathMatches(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i, part := range patternParts {
		if part == "*" {
			continue
		}
		if part != pathParts[i] {
			return false
		}
	}
	return true
}
