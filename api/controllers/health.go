package controllers

import (
	"context"
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/pkg/config"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
)

// Pinger reports reachability of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dissmar-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the document store and cache. Nil pingers are skipped
// so partial deployments still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dissmar-Env", cfg.App.Env)

		for _, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "dependency unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
