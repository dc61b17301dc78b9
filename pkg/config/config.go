package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is passed to envconfig when decoding the environment.
	EnvPrefix = "creatorden"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced by tests and tooling.
const (
	EnvAppEnv   = "CREATORDEN_APP_ENV"
	EnvPort     = "CREATORDEN_APP_PORT"
	EnvDBDSN    = "CREATORDEN_DB_DSN"
	EnvRedisURL = "CREATORDEN_REDIS_URL"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Wallet       WalletConfig
	Moderation   ModerationConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CREATORDEN_APP_ENV" required:"true"`
	Port         string `envconfig:"CREATORDEN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CREATORDEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CREATORDEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CREATORDEN_DB_DSN"`
	Driver string `envconfig:"CREATORDEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CREATORDEN_DB_HOST"`
	LegacyPort     int    `envconfig:"CREATORDEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CREATORDEN_DB_USER"`
	LegacyPassword string `envconfig:"CREATORDEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"CREATORDEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"CREATORDEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CREATORDEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CREATORDEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CREATORDEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CREATORDEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from the legacy host/user variables when
// a full DSN was not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either CREATORDEN_DB_DSN or CREATORDEN_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.LegacyHost, d.LegacyPort, d.LegacyUser, d.LegacyPassword, d.LegacyName, d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CREATORDEN_REDIS_URL"`
	Address      string        `envconfig:"CREATORDEN_REDIS_ADDR"`
	Password     string        `envconfig:"CREATORDEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"CREATORDEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CREATORDEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CREATORDEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CREATORDEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CREATORDEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CREATORDEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// WalletConfig tunes the token economy.
type WalletConfig struct {
	// AutoProvision creates an account with zero balance when a purchase
	// targets an unknown user. Off unless explicitly enabled.
	AutoProvision bool `envconfig:"CREATORDEN_WALLET_AUTO_PROVISION" default:"false"`
}

type ModerationConfig struct {
	BlockedKeywords []string `envconfig:"CREATORDEN_MODERATION_BLOCKLIST" default:"nsfw,adult,explicit,18+"`
}

type RateLimitConfig struct {
	WalletWindow    time.Duration `envconfig:"CREATORDEN_RATE_LIMIT_WALLET_WINDOW" default:"1m"`
	WalletUserLimit int           `envconfig:"CREATORDEN_RATE_LIMIT_WALLET_USER_LIMIT" default:"30"`
	WalletIPLimit   int           `envconfig:"CREATORDEN_RATE_LIMIT_WALLET_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CREATORDEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CREATORDEN_AUTO_MIGRATE" default:"false"`
}
