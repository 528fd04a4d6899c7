package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Square        SquareConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"AURUMPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"AURUMPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AURUMPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AURUMPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AURUMPOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AURUMPOS_DB_DSN"`
	Driver string `envconfig:"AURUMPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AURUMPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"AURUMPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AURUMPOS_DB_USER"`
	LegacyPassword string `envconfig:"AURUMPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AURUMPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AURUMPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AURUMPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AURUMPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AURUMPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AURUMPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AURUMPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AURUMPOS_REDIS_ADDR"`
	Password     string        `envconfig:"AURUMPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AURUMPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AURUMPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AURUMPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AURUMPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AURUMPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AURUMPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AURUMPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AURUMPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AURUMPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AURUMPOS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AURUMPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AURUMPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AURUMPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AURUMPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AURUMPOS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"AURUMPOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"AURUMPOS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"AURUMPOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AURUMPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AURUMPOS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"AURUMPOS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AURUMPOS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AURUMPOS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AURUMPOS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic            string `envconfig:"AURUMPOS_PUBSUB_SALES_TOPIC" default:"aurum-sale-events"`
	AnalyticsSubscription string `envconfig:"AURUMPOS_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"aurum-sale-events-analytics"`
}

type BigQueryConfig struct {
	Dataset      string `envconfig:"AURUMPOS_BIGQUERY_DATASET" default:"aurumpos"`
	RevenueTable string `envconfig:"AURUMPOS_BIGQUERY_REVENUE_TABLE" default:"sales_revenue"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"AURUMPOS_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"AURUMPOS_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"AURUMPOS_SQUARE_LOCATION_ID"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// Enabled reports whether card capture through Square is configured.
func (s SquareConfig) Enabled() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AURUMPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AURUMPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AURUMPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	HeldOrderTTLHours   int           `envconfig:"AURUMPOS_CRON_HELD_ORDER_TTL_HOURS" default:"72"`
	HeldOrderInterval   time.Duration `envconfig:"AURUMPOS_CRON_HELD_ORDER_INTERVAL" default:"15m"`
	AuditRetentionDays  int           `envconfig:"AURUMPOS_CRON_AUDIT_RETENTION_DAYS" default:"90"`
	AuditInterval       time.Duration `envconfig:"AURUMPOS_CRON_AUDIT_INTERVAL" default:"24h"`
	OutboxRetentionDays int           `envconfig:"AURUMPOS_CRON_OUTBOX_RETENTION_DAYS" default:"14"`
	OutboxInterval      time.Duration `envconfig:"AURUMPOS_CRON_OUTBOX_INTERVAL" default:"6h"`
	LockTTL             time.Duration `envconfig:"AURUMPOS_CRON_LOCK_TTL" default:"10m"`
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
