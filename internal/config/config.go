package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Policy    PolicyConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	AutoMigrate     bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
	StreamExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name            string
	Version         string
	Port            int
	Env             string
	LogLevel        string
	LogFormat       string
	FrontendURL     string
	ShutdownTimeout time.Duration
}

type RateLimitConfig struct {
	LoginRequestsPerSecond float64
	LoginBurst             int
}

type JobsConfig struct {
	Enabled           bool
	Interval          time.Duration
	StaleSessionAfter time.Duration
}

type PolicyConfig struct {
	File string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	var errs []error
	config := &Config{}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432, &errs),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "worktime"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 25, &errs)),
		MinConns:        int32(getEnvInt("DB_MIN_CONNS", 5, &errs)),
		MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour, &errs),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false, &errs),
	}

	config.App = AppConfig{
		Name:            getEnv("APP_NAME", "worktime-api"),
		Version:         getEnv("APP_VERSION", "v1.0.0"),
		Port:            getEnvInt("APP_PORT", 8080, &errs),
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:4200"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second, &errs),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", 8*time.Hour, &errs),
		StreamExpiration: getEnvDuration("JWT_STREAM_EXPIRATION_TIME", 5*time.Minute, &errs),
	}

	config.RateLimit = RateLimitConfig{
		LoginRequestsPerSecond: getEnvFloat("RATE_LIMIT_LOGIN_RPS", 1, &errs),
		LoginBurst:             getEnvInt("RATE_LIMIT_LOGIN_BURST", 5, &errs),
	}

	config.Jobs = JobsConfig{
		Enabled:           getEnvBool("JOBS_ENABLED", true, &errs),
		Interval:          getEnvDuration("JOBS_INTERVAL", 15*time.Minute, &errs),
		StaleSessionAfter: getEnvDuration("JOB_STALE_SESSION_AFTER", 16*time.Hour, &errs),
	}

	config.Policy = PolicyConfig{
		File: getEnv("POLICY_FILE", "config/policy.yaml"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	} else if len(c.JWT.Secret) < 32 && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be at least 32 characters in production"))
	}
	if c.JWT.AccessExpiration <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRATION_TIME must be positive"))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %d is out of range", c.App.Port))
	}
	if c.RateLimit.LoginRequestsPerSecond <= 0 || c.RateLimit.LoginBurst <= 0 {
		errs = append(errs, errors.New("login rate limit must be positive"))
	}
	if c.Jobs.Enabled && c.Jobs.Interval <= 0 {
		errs = append(errs, errors.New("JOBS_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}
