package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/cryptonite-hq/cryptonite-backend/api/responses"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/redis"
)

// HealthLive reports that the process is running.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging the backing stores.
func HealthReady(logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failures := map[string]string{}
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				failures["postgres"] = err.Error()
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				failures["redis"] = err.Error()
			}
		}
		if len(failures) > 0 {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(failures))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
