package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "SOLARQUOTE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SOLARQUOTE_APP_ENV"
	EnvPort     = "SOLARQUOTE_APP_PORT"
	EnvDBDSN    = "SOLARQUOTE_DB_DSN"
	EnvDBHost   = "SOLARQUOTE_DB_HOST"
	EnvDBUser   = "SOLARQUOTE_DB_USER"
	EnvDBName   = "SOLARQUOTE_DB_NAME"
	EnvRedisURL = "SOLARQUOTE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
