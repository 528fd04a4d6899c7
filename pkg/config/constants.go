package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "aurumpos"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (validation,
// error messages, tests).
const (
	EnvAppEnv                 = "AURUMPOS_APP_ENV"
	EnvPort                   = "AURUMPOS_APP_PORT"
	EnvDBDSN                  = "AURUMPOS_DB_DSN"
	EnvDBHost                 = "AURUMPOS_DB_HOST"
	EnvDBUser                 = "AURUMPOS_DB_USER"
	EnvDBName                 = "AURUMPOS_DB_NAME"
	EnvRedisURL               = "AURUMPOS_REDIS_URL"
	EnvJWTSecret              = "AURUMPOS_JWT_SECRET"
	EnvJWTIssuer              = "AURUMPOS_JWT_ISSUER"
	EnvJWTExpMins             = "AURUMPOS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AURUMPOS_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "AURUMPOS_GCP_PROJECT_ID"
	EnvPubSubSalesTopic       = "AURUMPOS_PUBSUB_SALES_TOPIC"
	EnvPubSubAnalyticsSub     = "AURUMPOS_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
