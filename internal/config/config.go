package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Sportradar API
	SportradarAPIKey  string        `envconfig:"SPORTRADAR_API_KEY" required:"true"`
	SportradarBaseURL string        `envconfig:"SPORTRADAR_BASE_URL" default:"https://api.sportradar.com/soccer/trial/v4/en"`
	SportradarTimeout time.Duration `envconfig:"SPORTRADAR_TIMEOUT" default:"30s"`

	// Provider rate limiting. Every call to the provider passes one shared gate.
	ProviderMinInterval  time.Duration `envconfig:"PROVIDER_MIN_INTERVAL" default:"1s"`
	ProviderMaxRetries   int           `envconfig:"PROVIDER_MAX_RETRIES" default:"3"`
	StatsStaggerInterval time.Duration `envconfig:"STATS_STAGGER_INTERVAL" default:"1200ms"`

	// Sync targets
	SeasonIDs      []string `envconfig:"SEASON_IDS"`
	CompetitionIDs []string `envconfig:"COMPETITION_IDS"`

	// Language model
	LLMAPIKey      string        `envconfig:"LLM_API_KEY" default:""`
	LLMBaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMModel       string        `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMMaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"200"`
	LLMTemperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`

	// Logo lookup (best effort)
	LogoLookupEnabled bool   `envconfig:"LOGO_LOOKUP_ENABLED" default:"true"`
	LogoLookupURL     string `envconfig:"LOGO_LOOKUP_URL" default:"https://www.thesportsdb.com/api/v1/json/3/searchteams.php"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"courtside"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"courtside_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	DailySyncCron      string `envconfig:"DAILY_SYNC_CRON" default:"0 3 * * *"`

	// Caching TTL (in seconds)
	CacheTTLLogos int `envconfig:"CACHE_TTL_LOGOS" default:"604800"` // 7 days

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportradarAPIKey == "" {
		return fmt.Errorf("SPORTRADAR_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.ProviderMinInterval <= 0 {
		return fmt.Errorf("PROVIDER_MIN_INTERVAL must be positive")
	}

	if c.StatsStaggerInterval <= 0 {
		return fmt.Errorf("STATS_STAGGER_INTERVAL must be positive")
	}

	if c.ProviderMaxRetries < 0 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must not be negative")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Timezone, err)
	}

	return nil
}

// Location returns the time zone that defines a calendar day
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdviceEnabled reports whether a language-model key is configured
func (c *Config) AdviceEnabled() bool {
	return c.LLMAPIKey != ""
}

// LogoCacheTTL returns the logo cache TTL as a duration
func (c *Config) LogoCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLLogos) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
