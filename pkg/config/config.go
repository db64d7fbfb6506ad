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
	Password      PasswordConfig
	SMS           SMSConfig
	Cargo         CargoConfig
	CORS          CORSConfig
	AuthRateLimit AuthRateLimitConfig
	Features      FeatureFlags
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
	Env          string `envconfig:"TERMINAL_APP_ENV" required:"true"`
	Port         string `envconfig:"TERMINAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TERMINAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TERMINAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TERMINAL_DB_DSN"`
	Driver string `envconfig:"TERMINAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TERMINAL_DB_HOST"`
	LegacyPort     int    `envconfig:"TERMINAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TERMINAL_DB_USER"`
	LegacyPassword string `envconfig:"TERMINAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"TERMINAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"TERMINAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TERMINAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TERMINAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TERMINAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TERMINAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TERMINAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TERMINAL_REDIS_ADDR"`
	Password     string        `envconfig:"TERMINAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"TERMINAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TERMINAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TERMINAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TERMINAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TERMINAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TERMINAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TERMINAL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TERMINAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TERMINAL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TERMINAL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TERMINAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TERMINAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TERMINAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TERMINAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TERMINAL_ARGON_KEY_LEN" default:"32"`
}

type SMSConfig struct {
	GatewayURL string `envconfig:"TERMINAL_SMS_GATEWAY_URL"`
	APIKey     string `envconfig:"TERMINAL_SMS_API_KEY"`
	Sender     string `envconfig:"TERMINAL_SMS_SENDER"`
	DryRun     bool   `envconfig:"TERMINAL_SMS_DRY_RUN" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TERMINAL_CORS_ORIGINS" default:"http://localhost:3000"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TERMINAL_LOGIN_RATE_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"TERMINAL_LOGIN_RATE_IP_LIMIT" default:"30"`
	LoginPhoneLimit    int           `envconfig:"TERMINAL_LOGIN_RATE_PHONE_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"TERMINAL_REGISTER_RATE_WINDOW" default:"15m"`
	RegisterIPLimit    int           `envconfig:"TERMINAL_REGISTER_RATE_IP_LIMIT" default:"10"`
	RegisterPhoneLimit int           `envconfig:"TERMINAL_REGISTER_RATE_PHONE_LIMIT" default:"3"`
}

type FeatureFlags struct {
	AutoMigrate bool `envconfig:"TERMINAL_AUTO_MIGRATE" default:"false"`
}

type CargoConfig struct {
	CancelBanDuration time.Duration `envconfig:"TERMINAL_CARGO_CANCEL_BAN_DURATION" default:"24h"`
	MaxTruckCount     int           `envconfig:"TERMINAL_CARGO_MAX_TRUCK_COUNT" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DriverSQLite {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
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
