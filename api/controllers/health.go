package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/db"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
	pkgredis "github.com/freightport/terminal-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Terminal-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady aggregates dependency pings; any failure marks the instance
// not ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Terminal-Env", cfg.App.Env)

		var err error
		if dbP != nil {
			err = multierr.Append(err, dbP.Ping(r.Context()))
		}
		if redisP != nil {
			err = multierr.Append(err, redisP.Ping(r.Context()))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
