package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// InsecureDefaultSecret is only used when AUTH_ALLOW_INSECURE_SECRET is set.
const InsecureDefaultSecret = "your-secret-key-change-in-production"

// Credential store backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret string
	// InsecureSecret is true when JWTSecret fell back to InsecureDefaultSecret.
	InsecureSecret bool
	TokenTTLHours  int
	BcryptCost     int
	CookieSecure   bool

	CredentialStore string

	DemoLoginEnabled bool
	DemoEmail        string
	DemoPassword     string

	LoginMaxFailures    int
	LoginLockoutMinutes int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"app"`
	Postgres struct {
		DSN           string `yaml:"dsn"`
		MaxConns      int32  `yaml:"max_conns"`
		MigrationsDir string `yaml:"migrations_dir"`
	} `yaml:"postgres"`
	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`
	Logger struct {
		Level string `yaml:"level"`
	} `yaml:"logger"`
	Auth struct {
		TokenTTLHours       int    `yaml:"token_ttl_hours"`
		BcryptCost          int    `yaml:"bcrypt_cost"`
		CredentialStore     string `yaml:"credential_store"`
		DemoLoginEnabled    bool   `yaml:"demo_login_enabled"`
		DemoEmail           string `yaml:"demo_email"`
		LoginMaxFailures    int    `yaml:"login_max_failures"`
		LoginLockoutMinutes int    `yaml:"login_lockout_minutes"`
	} `yaml:"auth"`
}

func defaults() Config {
	return Config{
		App: AppConfig{
			Name:                  "vendorx-marketplace",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "8080",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
		},
		Postgres: PostgresConfig{
			MaxConns:       10,
			MinConns:       2,
			RunMigrations:  true,
			MigrationsDir:  "migrations",
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis:  RedisConfig{Addr: "127.0.0.1:6379"},
		Logger: LoggerConfig{Level: "info"},
		Auth: AuthConfig{
			TokenTTLHours:       7 * 24,
			BcryptCost:          12,
			CredentialStore:     StorePostgres,
			DemoEmail:           "demo@vendorx.local",
			LoginMaxFailures:    5,
			LoginLockoutMinutes: 15,
		},
		Notification: NotificationConfig{EmailFrom: "noreply@vendorx.local"},
	}
}

// Load resolves configuration from defaults, then the optional YAML file named
// by CONFIG_FILE (config.yaml when unset), then environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	base := defaults()
	if err := applyFile(&base, getEnv("CONFIG_FILE", "config.yaml")); err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(base.Redis.DB)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", base.App.Env)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", base.App.Name),
			Env:                   env,
			Host:                  getEnv("APP_HOST", base.App.Host),
			Port:                  getEnv("APP_PORT", base.App.Port),
			Version:               getEnv("APP_VERSION", base.App.Version),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", base.App.RequestTimeoutSeconds),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("POSTGRES_DSN", base.Postgres.DSN),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", int(base.Postgres.MaxConns))),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", int(base.Postgres.MinConns))),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", base.Postgres.RunMigrations),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", base.Postgres.MigrationsDir),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", int(base.Postgres.ConnMaxIdleSec))),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", int(base.Postgres.ConnMaxLifeSec))),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", base.Redis.Addr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", base.Logger.Level),
		},
		Auth: AuthConfig{
			JWTSecret:           firstNonEmpty(os.Getenv("AUTH_JWT_SECRET"), os.Getenv("JWT_SECRET")),
			TokenTTLHours:       getEnvAsInt("AUTH_TOKEN_TTL_HOURS", base.Auth.TokenTTLHours),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", base.Auth.BcryptCost),
			CookieSecure:        getEnvAsBool("AUTH_COOKIE_SECURE", env == "production"),
			CredentialStore:     strings.ToLower(getEnv("CREDENTIAL_STORE", base.Auth.CredentialStore)),
			DemoLoginEnabled:    getEnvAsBool("AUTH_DEMO_LOGIN_ENABLED", base.Auth.DemoLoginEnabled),
			DemoEmail:           getEnv("AUTH_DEMO_EMAIL", base.Auth.DemoEmail),
			DemoPassword:        os.Getenv("AUTH_DEMO_PASSWORD"),
			LoginMaxFailures:    getEnvAsInt("AUTH_LOGIN_MAX_FAILURES", base.Auth.LoginMaxFailures),
			LoginLockoutMinutes: getEnvAsInt("AUTH_LOGIN_LOCKOUT_MINUTES", base.Auth.LoginLockoutMinutes),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", base.Notification.EmailFrom),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if !getEnvAsBool("AUTH_ALLOW_INSECURE_SECRET", false) {
			return nil, apperrors.NewConfigurationError("AUTH_JWT_SECRET is required", nil)
		}
		cfg.Auth.JWTSecret = InsecureDefaultSecret
		cfg.Auth.InsecureSecret = true
	}

	if cfg.Auth.CredentialStore != StorePostgres && cfg.Auth.CredentialStore != StoreRedis {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("unknown CREDENTIAL_STORE %q", cfg.Auth.CredentialStore), nil)
	}

	if cfg.Auth.DemoLoginEnabled && cfg.Auth.DemoPassword == "" {
		return nil, apperrors.NewConfigurationError("AUTH_DEMO_PASSWORD is required when demo login is enabled", nil)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperrors.NewConfigurationError("read config file", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return apperrors.NewConfigurationError("parse config file", err)
	}

	if f.App.Name != "" {
		cfg.App.Name = f.App.Name
	}
	if f.App.Env != "" {
		cfg.App.Env = f.App.Env
	}
	if f.App.Host != "" {
		cfg.App.Host = f.App.Host
	}
	if f.App.Port != "" {
		cfg.App.Port = f.App.Port
	}
	if f.Postgres.DSN != "" {
		cfg.Postgres.DSN = f.Postgres.DSN
	}
	if f.Postgres.MaxConns > 0 {
		cfg.Postgres.MaxConns = f.Postgres.MaxConns
	}
	if f.Postgres.MigrationsDir != "" {
		cfg.Postgres.MigrationsDir = f.Postgres.MigrationsDir
	}
	if f.Redis.Addr != "" {
		cfg.Redis.Addr = f.Redis.Addr
	}
	if f.Redis.DB > 0 {
		cfg.Redis.DB = f.Redis.DB
	}
	if f.Logger.Level != "" {
		cfg.Logger.Level = f.Logger.Level
	}
	if f.Auth.TokenTTLHours > 0 {
		cfg.Auth.TokenTTLHours = f.Auth.TokenTTLHours
	}
	if f.Auth.BcryptCost > 0 {
		cfg.Auth.BcryptCost = f.Auth.BcryptCost
	}
	if f.Auth.CredentialStore != "" {
		cfg.Auth.CredentialStore = f.Auth.CredentialStore
	}
	if f.Auth.DemoLoginEnabled {
		cfg.Auth.DemoLoginEnabled = true
	}
	if f.Auth.DemoEmail != "" {
		cfg.Auth.DemoEmail = f.Auth.DemoEmail
	}
	if f.Auth.LoginMaxFailures > 0 {
		cfg.Auth.LoginMaxFailures = f.Auth.LoginMaxFailures
	}
	if f.Auth.LoginLockoutMinutes > 0 {
		cfg.Auth.LoginLockoutMinutes = f.Auth.LoginLockoutMinutes
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether APP_ENV is production.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// LockoutWindow returns how long a locked email stays locked.
func (a AuthConfig) LockoutWindow() time.Duration {
	return time.Duration(a.LoginLockoutMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
