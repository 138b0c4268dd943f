package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/suncrest-energy/solarquote-backend/api/responses"
	"github.com/suncrest-energy/solarquote-backend/pkg/config"
	"github.com/suncrest-energy/solarquote-backend/pkg/db"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
	"github.com/suncrest-energy/solarquote-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SolarQuote-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SolarQuote-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbPinger != nil {
			if err := dbPinger.Ping(ctx); err != nil {
				checks["db"] = "unreachable"
				healthy = false
			} else {
				checks["db"] = "ok"
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "backing store unreachable").WithDetails(checks))
			return
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
