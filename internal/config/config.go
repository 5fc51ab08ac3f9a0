package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Commerce  CommerceConfig
	Loyalty   LoyaltyConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
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

// CommerceConfig holds commerce-platform API values.
type CommerceConfig struct {
	APIHost      string
	Tenant       int
	Site         int
	ClientID     string
	SharedSecret string
	Currency     string
	Locale       string
}

// LoyaltyConfig holds loyalty-platform API credentials.
type LoyaltyConfig struct {
	BaseURL              string
	ClientID             string
	ClientSecret         string
	TokenLifetimeSeconds int
}

// SchedulerConfig controls the transaction sync pipelines.
type SchedulerConfig struct {
	Enabled           bool
	ReturnSyncEnabled bool
	IntervalSeconds   int
	WindowMinutes     int
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Addr string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	tenant, err := strconv.Atoi(getEnv("COMMERCE_TENANT", "1000118"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMERCE_TENANT: %w", err)
	}
	site, err := strconv.Atoi(getEnv("COMMERCE_SITE", "1000237"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMERCE_SITE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "loyalty-bridge"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "4000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Commerce: CommerceConfig{
			APIHost:      getEnv("COMMERCE_API_HOST", ""),
			Tenant:       tenant,
			Site:         site,
			ClientID:     os.Getenv("COMMERCE_CLIENT_ID"),
			SharedSecret: os.Getenv("COMMERCE_SHARED_SECRET"),
			Currency:     getEnv("COMMERCE_CURRENCY", "USD"),
			Locale:       getEnv("COMMERCE_LOCALE", "en-US"),
		},
		Loyalty: LoyaltyConfig{
			BaseURL:              getEnv("LOYALTY_URL", "https://north-america.api.capillarytech.com"),
			ClientID:             os.Getenv("LOYALTY_CLIENT_ID"),
			ClientSecret:         os.Getenv("LOYALTY_CLIENT_SECRET"),
			TokenLifetimeSeconds: getEnvAsInt("LOYALTY_TOKEN_LIFETIME_SECONDS", 3600),
		},
		Scheduler: SchedulerConfig{
			Enabled:           getEnvAsBool("SCHEDULER_RUNNING", false),
			ReturnSyncEnabled: getEnvAsBool("SCHEDULER_RETURN", false),
			IntervalSeconds:   getEnvAsInt("SCHEDULER_INTERVAL_SECONDS", 120),
			WindowMinutes:     getEnvAsInt("SCHEDULER_WINDOW_MINUTES", 60),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", "0.0.0.0:9090"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenLifetime returns the nominal lifetime of an issued bearer token.
func (l LoyaltyConfig) TokenLifetime() time.Duration {
	if l.TokenLifetimeSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(l.TokenLifetimeSeconds) * time.Second
}

// Interval returns the pause between sync ticks.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Window returns the trailing window scanned for closed records each tick.
func (s SchedulerConfig) Window() time.Duration {
	if s.WindowMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.WindowMinutes) * time.Minute
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
