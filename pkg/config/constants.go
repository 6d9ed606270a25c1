package config

const (
	EnvPrefix = "STOCKSYNC"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "STOCKSYNC_APP_ENV"
	EnvPort   = "STOCKSYNC_APP_PORT"

	EnvDBDSN  = "STOCKSYNC_DB_DSN"
	EnvDBHost = "STOCKSYNC_DB_HOST"
	EnvDBUser = "STOCKSYNC_DB_USER"
	EnvDBName = "STOCKSYNC_DB_NAME"

	EnvRedisURL = "STOCKSYNC_REDIS_URL"

	EnvShopifyWebhookSecret = "STOCKSYNC_SHOPIFY_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
