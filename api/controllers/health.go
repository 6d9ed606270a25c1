package controllers

import (
	"net/http"

	"github.com/beacontrade/stocksync-backend/api/responses"
	"github.com/beacontrade/stocksync-backend/pkg/config"
	"github.com/beacontrade/stocksync-backend/pkg/db"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockSync-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports 503 until every dependency answers a ping. Redis is
// optional wiring, a nil pinger is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers ...db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockSync-Env", cfg.App.Env)
		ctx := r.Context()

		for _, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency ping failed"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
