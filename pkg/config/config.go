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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Staff         StaffConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stats         StatsConfig
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
	Env          string `envconfig:"COUNTER_APP_ENV" required:"true"`
	Port         string `envconfig:"COUNTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COUNTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COUNTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COUNTER_DB_DSN"`
	Driver string `envconfig:"COUNTER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COUNTER_DB_HOST"`
	LegacyPort     int    `envconfig:"COUNTER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COUNTER_DB_USER"`
	LegacyPassword string `envconfig:"COUNTER_DB_PASSWORD"`
	LegacyName     string `envconfig:"COUNTER_DB_NAME"`
	LegacySSLMode  string `envconfig:"COUNTER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUNTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COUNTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COUNTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUNTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COUNTER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COUNTER_REDIS_ADDR"`
	Password     string        `envconfig:"COUNTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUNTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUNTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COUNTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COUNTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUNTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COUNTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COUNTER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COUNTER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"COUNTER_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// StaffConfig carries the shared kitchen passcode as an argon2id hash.
type StaffConfig struct {
	PasscodeHash     string `envconfig:"COUNTER_STAFF_PASSCODE_HASH" required:"true"`
	ArgonMemoryKB    int    `envconfig:"COUNTER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"COUNTER_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"COUNTER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"COUNTER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"COUNTER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"COUNTER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"COUNTER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite         bool `envconfig:"COUNTER_USE_SQLITE" default:"false"`
	AutoMigrate       bool `envconfig:"COUNTER_AUTO_MIGRATE" default:"false"`
	SeedCatalog       bool `envconfig:"COUNTER_SEED_CATALOG" default:"true"`
	EnforceStock      bool `envconfig:"COUNTER_ENFORCE_STOCK" default:"false"`
	EnableIdempotency bool `envconfig:"COUNTER_ENABLE_IDEMPOTENCY" default:"true"`
}

type StatsConfig struct {
	ExportPath  string `envconfig:"COUNTER_STATS_EXPORT_PATH" default:"static/stat.csv"`
	SampleLimit int    `envconfig:"COUNTER_STATS_SAMPLE_LIMIT" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file:counter.db?_fk=1"
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
