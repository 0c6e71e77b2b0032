package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/adoptly/adoptly-backend/api/responses"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// HealthLive reports process liveness only.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady checks the backing stores. A nil pinger is skipped so the
// endpoint works in deployments without Redis.
func HealthReady(dbPing, redisPing pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbPing != nil {
			if err := dbPing.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}
		if redisPing != nil {
			if err := redisPing.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis unavailable"))
				return
			}
			checks["redis"] = "ok"
		}

		checks["status"] = "ok"
		responses.WriteSuccess(w, checks)
	}
}
