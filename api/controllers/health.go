package controllers

import (
	"net/http"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/redis"
)

// Live reports process liveness only.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports readiness by pinging the database and redis.
func Ready(database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, checks)
	}
}
