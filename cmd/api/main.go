package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beacontrade/stocksync-backend/api/controllers/webhooks"
	"github.com/beacontrade/stocksync-backend/api/routes"
	"github.com/beacontrade/stocksync-backend/internal/deliveries"
	"github.com/beacontrade/stocksync-backend/internal/inventory"
	"github.com/beacontrade/stocksync-backend/internal/skus"
	"github.com/beacontrade/stocksync-backend/internal/stores"
	shopifywebhook "github.com/beacontrade/stocksync-backend/internal/webhooks/shopify"
	"github.com/beacontrade/stocksync-backend/pkg/config"
	"github.com/beacontrade/stocksync-backend/pkg/db"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
	"github.com/beacontrade/stocksync-backend/pkg/metrics"
	"github.com/beacontrade/stocksync-backend/pkg/migrate"
	"github.com/beacontrade/stocksync-backend/pkg/pubsub"
	"github.com/beacontrade/stocksync-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	var publisher *pubsub.Publisher
	if cfg.PubSub.Enabled() {
		publisher, err = pubsub.NewPublisher(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub publisher", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub publisher", err)
			}
		}()
	}

	tenantService, err := stores.NewService(stores.ServiceParams{
		Repo:     stores.NewRepository(dbClient.DB()),
		Cache:    redisClient,
		CacheTTL: cfg.TenantCache.TTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant service", err)
		os.Exit(1)
	}

	deliveryRepo := deliveries.NewRepository(dbClient.DB())
	guard, err := deliveries.NewGuard(deliveryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery guard", err)
		os.Exit(1)
	}
	deliveryLog, err := deliveries.NewLog(deliveryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery log", err)
		os.Exit(1)
	}

	skuRepo := skus.NewRepository(dbClient.DB())
	resolver, err := skus.NewResolver(skuRepo, webhookMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create sku resolver", err)
		os.Exit(1)
	}

	reconcilerParams := inventory.ReconcilerParams{
		LedgerRepo:   inventory.NewRepository(dbClient.DB()),
		LocationRepo: inventory.NewLocationRepository(dbClient.DB()),
		Resolver:     resolver,
		TxRunner:     dbClient,
		Logger:       logg,
	}
	if publisher != nil {
		reconcilerParams.Publisher = publisher
	}
	reconciler, err := inventory.NewReconciler(reconcilerParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler", err)
		os.Exit(1)
	}

	webhookService, err := shopifywebhook.NewService(shopifywebhook.ServiceParams{
		Reconciler: reconciler,
		Resolver:   resolver,
		SkuRepo:    skuRepo,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting webhook ingestion server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Metrics:  webhookMetrics,
			Gatherer: registry,
			Webhooks: webhooks.ShopifyWebhookParams{
				Service:       webhookService,
				Tenants:       tenantService,
				Guard:         guard,
				Log:           deliveryLog,
				Metrics:       webhookMetrics,
				WebhookSecret: cfg.Shopify.WebhookSecret,
				Logger:        logg,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "webhook ingestion server stopped unexpectedly", err)
		os.Exit(1)
	}
}
