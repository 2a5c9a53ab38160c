package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cryptonite"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CRYPTONITE_DB_DSN"
	EnvDBHost = "CRYPTONITE_DB_HOST"
	EnvDBUser = "CRYPTONITE_DB_USER"
	EnvDBName = "CRYPTONITE_DB_NAME"

	EnvJWTIssuer = "CRYPTONITE_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Hosting      HostingConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"CRYPTONITE_APP_ENV" required:"true"`
	Port         string `envconfig:"CRYPTONITE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRYPTONITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRYPTONITE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CRYPTONITE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CRYPTONITE_DB_DSN"`
	Driver string `envconfig:"CRYPTONITE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRYPTONITE_DB_HOST"`
	LegacyPort     int    `envconfig:"CRYPTONITE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRYPTONITE_DB_USER"`
	LegacyPassword string `envconfig:"CRYPTONITE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRYPTONITE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRYPTONITE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRYPTONITE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRYPTONITE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRYPTONITE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRYPTONITE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRYPTONITE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRYPTONITE_REDIS_ADDR"`
	Password     string        `envconfig:"CRYPTONITE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRYPTONITE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRYPTONITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRYPTONITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRYPTONITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRYPTONITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRYPTONITE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CRYPTONITE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CRYPTONITE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CRYPTONITE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"CRYPTONITE_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"CRYPTONITE_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"CRYPTONITE_STRIPE_ENV" default:"test"`
	Currency      string `envconfig:"CRYPTONITE_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// HostingConfig carries pricing knobs for hosting intake quotes.
type HostingConfig struct {
	SetupFeePerDevice string `envconfig:"CRYPTONITE_HOSTING_SETUP_FEE_PER_DEVICE" default:"1150.00"`
}

type CronConfig struct {
	TickInterval time.Duration `envconfig:"CRYPTONITE_CRON_TICK_INTERVAL" default:"1m"`
	LockTTL      time.Duration `envconfig:"CRYPTONITE_CRON_LOCK_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CRYPTONITE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CRYPTONITE_AUTO_MIGRATE" default:"false"`
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
