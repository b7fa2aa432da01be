package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"predictor/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	defaultXPAward                   = 10
	defaultLeaderboardIntervalMillis = 3600000
	minLeaderboardIntervalMillis     = 10000
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Guild used for command registration and membership checks

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Prediction game configuration
	PredictionsChannelID            string // Where questions are announced
	LeaderboardChannelID            string // Where rankings are posted
	XPAward                         int64  // Points granted per correct vote
	LeaderboardUpdateIntervalMillis int64

	// NATS configuration
	NATSServers string // Empty disables event forwarding

	// Redis configuration
	RedisAddr     string // Empty falls back to an in-process lock
	RedisPassword string
	RedisDB       int

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// LeaderboardUpdateInterval is the delay between periodic leaderboard refreshes
func (c *Config) LeaderboardUpdateInterval() time.Duration {
	return time.Duration(c.LeaderboardUpdateIntervalMillis) * time.Millisecond
}

// load loads configuration from an optional .env file and environment variables
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Prediction game
		PredictionsChannelID:            os.Getenv("PREDICTIONS_CHANNEL_ID"),
		LeaderboardChannelID:            os.Getenv("LEADERBOARD_CHANNEL_ID"),
		XPAward:                         defaultXPAward,
		LeaderboardUpdateIntervalMillis: defaultLeaderboardIntervalMillis,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Redis
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "predictor"),
		OTelExportIntervalMillis: 30000,

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if award := os.Getenv("XP_AWARD"); award != "" {
		parsed, err := strconv.ParseInt(award, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("XP_AWARD must be an integer: %w", err)
		}
		config.XPAward = parsed
	}
	if interval := os.Getenv("LEADERBOARD_UPDATE_INTERVAL_MS"); interval != "" {
		parsed, err := strconv.ParseInt(interval, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("LEADERBOARD_UPDATE_INTERVAL_MS must be an integer: %w", err)
		}
		config.LeaderboardUpdateIntervalMillis = parsed
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if parsed, err := strconv.Atoi(redisDB); err == nil {
			config.RedisDB = parsed
		}
	}
	if exportInterval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); exportInterval != "" {
		if parsed, err := strconv.Atoi(exportInterval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks required values; the test environment only gets range checks
func (c *Config) validate() error {
	if c.XPAward <= 0 {
		return fmt.Errorf("XP_AWARD must be positive, got %d", c.XPAward)
	}
	if c.LeaderboardUpdateIntervalMillis < minLeaderboardIntervalMillis {
		return fmt.Errorf("LEADERBOARD_UPDATE_INTERVAL_MS must be at least %d, got %d",
			minLeaderboardIntervalMillis, c.LeaderboardUpdateIntervalMillis)
	}

	if c.Environment == "test" {
		return nil
	}

	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.PredictionsChannelID == "" {
		return fmt.Errorf("PREDICTIONS_CHANNEL_ID is required")
	}
	if c.LeaderboardChannelID == "" {
		return fmt.Errorf("LEADERBOARD_CHANNEL_ID is required")
	}
	return nil
}

// ConfigureLogging applies the configured level and formatter to the global logger
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:                     "test",
		DiscordToken:                    "test-token",
		PredictionsChannelID:            "100000000000000001",
		LeaderboardChannelID:            "100000000000000002",
		XPAward:                         defaultXPAward,
		LeaderboardUpdateIntervalMillis: defaultLeaderboardIntervalMillis,
		OTelExporterType:                "none",
		OTelServiceName:                 "predictor",
		LogLevel:                        "info",
	}
}
