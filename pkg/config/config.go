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
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	Webhook      WebhookConfig
	Simulation   SimulationConfig
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
	Env          string `envconfig:"STOREMOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREMOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREMOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREMOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Name     string `envconfig:"STOREMOCK_STORE_NAME" default:"Mock Store"`
	Currency string `envconfig:"STOREMOCK_STORE_CURRENCY" default:"USD"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREMOCK_DB_DSN"`
	Driver string `envconfig:"STOREMOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREMOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREMOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREMOCK_DB_USER"`
	LegacyPassword string `envconfig:"STOREMOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREMOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREMOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREMOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREMOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREMOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREMOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREMOCK_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"STOREMOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREMOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREMOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREMOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREMOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREMOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREMOCK_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL         time.Duration `envconfig:"STOREMOCK_IDEMPOTENCY_TTL" default:"24h"`
	CriticalTTL time.Duration `envconfig:"STOREMOCK_IDEMPOTENCY_CRITICAL_TTL" default:"168h"`
}

type WebhookConfig struct {
	RequestTimeout  time.Duration `envconfig:"STOREMOCK_WEBHOOK_REQUEST_TIMEOUT" default:"10s"`
	ProfileCacheTTL time.Duration `envconfig:"STOREMOCK_WEBHOOK_PROFILE_CACHE_TTL" default:"1h"`
	ProfileCacheMax int           `envconfig:"STOREMOCK_WEBHOOK_PROFILE_CACHE_MAX" default:"256"`
	QueueSize       int           `envconfig:"STOREMOCK_WEBHOOK_QUEUE_SIZE" default:"128"`
}

type SimulationConfig struct {
	Secret string `envconfig:"STOREMOCK_SIMULATION_SECRET"`
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
