package controllers

import (
	"net/http"

	"github.com/voxindia/quickcart-backend/api/responses"
	"github.com/voxindia/quickcart-backend/pkg/config"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the cart store answers.
func HealthReady(cfg *config.Config, store redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickCart-Env", cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
