package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "ADOPTLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ADOPTLY_DB_DSN"
	EnvDBHost = "ADOPTLY_DB_HOST"
	EnvDBUser = "ADOPTLY_DB_USER"
	EnvDBName = "ADOPTLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Razorpay      RazorpayConfig
	Features      FeaturesConfig
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
	Env          string `envconfig:"ADOPTLY_APP_ENV" required:"true"`
	Port         string `envconfig:"ADOPTLY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ADOPTLY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ADOPTLY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ADOPTLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ADOPTLY_DB_DSN"`
	Driver string `envconfig:"ADOPTLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ADOPTLY_DB_HOST"`
	LegacyPort     int    `envconfig:"ADOPTLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ADOPTLY_DB_USER"`
	LegacyPassword string `envconfig:"ADOPTLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"ADOPTLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"ADOPTLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ADOPTLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ADOPTLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ADOPTLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ADOPTLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ADOPTLY_REDIS_URL"`
	Address      string        `envconfig:"ADOPTLY_REDIS_ADDR"`
	Password     string        `envconfig:"ADOPTLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ADOPTLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ADOPTLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ADOPTLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ADOPTLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ADOPTLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ADOPTLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ADOPTLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ADOPTLY_JWT_ISSUER" default:"adoptly"`
	ExpirationMinutes int    `envconfig:"ADOPTLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ADOPTLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ADOPTLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ADOPTLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ADOPTLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ADOPTLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ADOPTLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RazorpayConfig carries the gateway credentials and the webhook signing secret.
// The secret signs the "<order_id>|<payment_id>" pair Razorpay returns after
// checkout; verification happens locally, never via a fetch back to the gateway.
type RazorpayConfig struct {
	KeyID          string        `envconfig:"ADOPTLY_RAZORPAY_KEY_ID" required:"true"`
	KeySecret      string        `envconfig:"ADOPTLY_RAZORPAY_KEY_SECRET" required:"true"`
	RequestTimeout time.Duration `envconfig:"ADOPTLY_RAZORPAY_REQUEST_TIMEOUT" default:"10s"`
	Currency       string        `envconfig:"ADOPTLY_RAZORPAY_CURRENCY" default:"INR"`
}

type FeaturesConfig struct {
	UseSQLite   bool `envconfig:"ADOPTLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ADOPTLY_AUTO_MIGRATE" default:"false"`
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
