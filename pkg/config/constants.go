package config

// EnvPrefix is passed to envconfig; explicit envconfig tags below carry the
// full variable names so the prefix only matters for untagged fields.
const EnvPrefix = "DISSMAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names, exported so tests can set and unset them.
const (
	EnvAppEnv   = "DISSMAR_APP_ENV"
	EnvPort     = "DISSMAR_APP_PORT"
	EnvLogLevel = "DISSMAR_LOG_LEVEL"

	EnvFirebaseProjectID   = "DISSMAR_FIREBASE_PROJECT_ID"
	EnvFirebaseCredentials = "DISSMAR_FIREBASE_CREDENTIALS_FILE"

	EnvRedisURL = "DISSMAR_REDIS_URL"

	EnvCatalogCacheTTL = "DISSMAR_CATALOG_CACHE_TTL"
)
