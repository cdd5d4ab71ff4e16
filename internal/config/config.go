package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned by Load when no session signing secret is configured.
var ErrMissingSecret = errors.New("SESSION_SECRET is not set")

// ErrDevRoutesInProduction is returned by Load when SESSION_DEV_ROUTES is enabled with APP_ENV=production.
var ErrDevRoutesInProduction = errors.New("SESSION_DEV_ROUTES must not be enabled in production")

// Config aggregates runtime configuration for the toolkit.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Session SessionConfig
	Seed    SeedConfig
	Probe   ProbeConfig
	Audit   AuditConfig
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

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Name   string
	Level  string
	Output string
}

// SessionConfig defines session token parameters.
type SessionConfig struct {
	Secret     string
	TTLSeconds int
	KeyPrefix  string
	// DevRoutes exposes unauthenticated token issuance and stored-token lookup over HTTP.
	DevRoutes bool
}

// SeedConfig controls the fixture seeder.
type SeedConfig struct {
	FixtureFile  string
	BcryptCost   int
	SubjectAlias string
}

// ProbeConfig controls the static image probe.
type ProbeConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// AuditConfig controls the session event trail. An empty Key keeps events in logs only.
type AuditConfig struct {
	Key        string
	MaxEntries int
}

// Load reads configuration from environment variables, applying defaults where possible.
// The session secret has no default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret := getEnv("SESSION_SECRET", os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		return nil, ErrMissingSecret
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-devkit"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Session: SessionConfig{
			Secret:     secret,
			TTLSeconds: getEnvAsInt("SESSION_TTL_SECONDS", 86400),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "session:"),
			DevRoutes:  getEnvAsBool("SESSION_DEV_ROUTES", false),
		},
		Seed: SeedConfig{
			FixtureFile:  getEnv("SEED_FIXTURE_FILE", "fixtures/seed.yaml"),
			BcryptCost:   getEnvAsInt("SEED_BCRYPT_COST", 10),
			SubjectAlias: getEnv("SEED_SUBJECT_ALIAS", "userId"),
		},
		Probe: ProbeConfig{
			BaseURL:        getEnv("PROBE_BASE_URL", "http://localhost:3000"),
			TimeoutSeconds: getEnvAsInt("PROBE_TIMEOUT_SECONDS", 5),
		},
		Audit: AuditConfig{
			Key:        getEnv("AUDIT_KEY", "audit:sessions"),
			MaxEntries: getEnvAsInt("AUDIT_MAX_ENTRIES", 1000),
		},
	}

	if cfg.Session.DevRoutes && cfg.App.IsProduction() {
		return nil, ErrDevRoutesInProduction
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the process runs with APP_ENV=production.
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

// Timeout returns the per-request probe timeout.
func (p ProbeConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
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
