package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DISSMAR_APP_ENV" required:"true"`
	Port         string `envconfig:"DISSMAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISSMAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISSMAR_LOG_WARN_STACK" default:"false"`
	// CORSOrigins adds allowed origins beyond the local dev defaults,
	// comma separated.
	CORSOrigins []string `envconfig:"DISSMAR_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type FirebaseConfig struct {
	ProjectID string `envconfig:"DISSMAR_FIREBASE_PROJECT_ID" required:"true"`
	// CredentialsFile is optional; when empty the SDK falls back to
	// Application Default Credentials.
	CredentialsFile string `envconfig:"DISSMAR_FIREBASE_CREDENTIALS_FILE"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISSMAR_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"DISSMAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISSMAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISSMAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISSMAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISSMAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"DISSMAR_CATALOG_CACHE_TTL" default:"5m"`
}
