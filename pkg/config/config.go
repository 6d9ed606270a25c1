package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Shopify      ShopifyConfig
	TenantCache  TenantCacheConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKSYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKSYNC_DB_DSN"`
	Driver string `envconfig:"STOCKSYNC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKSYNC_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKSYNC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKSYNC_DB_USER"`
	LegacyPassword string `envconfig:"STOCKSYNC_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKSYNC_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ShopifyConfig struct {
	WebhookSecret string `envconfig:"STOCKSYNC_SHOPIFY_WEBHOOK_SECRET" required:"true"`
	APIVersion    string `envconfig:"STOCKSYNC_SHOPIFY_API_VERSION" default:"2025-07"`
}

type TenantCacheConfig struct {
	TTL time.Duration `envconfig:"STOCKSYNC_TENANT_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKSYNC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOCKSYNC_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOCKSYNC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOCKSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LedgerTopic string `envconfig:"STOCKSYNC_PUBSUB_LEDGER_TOPIC"`
}

// Enabled reports whether the ledger eventing surface is configured at all.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.LedgerTopic) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
