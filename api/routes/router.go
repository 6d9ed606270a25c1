package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beacontrade/stocksync-backend/api/controllers"
	webhookcontrollers "github.com/beacontrade/stocksync-backend/api/controllers/webhooks"
	"github.com/beacontrade/stocksync-backend/api/middleware"
	"github.com/beacontrade/stocksync-backend/pkg/config"
	"github.com/beacontrade/stocksync-backend/pkg/db"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
	"github.com/beacontrade/stocksync-backend/pkg/metrics"
)

type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    db.Pinger
	Metrics  *metrics.WebhookMetrics
	Gatherer prometheus.Gatherer
	Webhooks webhookcontrollers.ShopifyWebhookParams
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	if params.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/shopify", webhookcontrollers.ShopifyWebhook(params.Webhooks))
	})

	return r
}
