package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorConfig holds the external ingredient extractor configuration.
// Text analysis is disabled when APIKey is empty.
type ExtractorConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// Enabled reports whether an extractor is configured
func (c ExtractorConfig) Enabled() bool {
	return c.APIKey != ""
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // only "memory"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// ReferenceConfig points at an optional YAML reference dataset
type ReferenceConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig tunes the verdict engine
type MatchingConfig struct {
	Threshold       float64 `mapstructure:"threshold"`
	DedupSimilarity float64 `mapstructure:"dedup_similarity"`
	DebugLogging    bool    `mapstructure:"debug_logging"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json or logfmt
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/veganscan/")

	// Environment variable settings: VEGANSCAN_SERVER_PORT -> server.port
	v.SetEnvPrefix("VEGANSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from ./.env without overriding ones already set.
// A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Extractor defaults
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.base_url", "https://api.veganscan.app")
	v.SetDefault("extractor.timeout", "30s")
	v.SetDefault("extractor.requests_per_minute", 60)
	v.SetDefault("extractor.max_retries", 3)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)

	// Reference data defaults (empty path uses the built-in dataset)
	v.SetDefault("reference.path", "")

	// Matching defaults
	v.SetDefault("matching.threshold", 0.8)
	v.SetDefault("matching.dedup_similarity", 0.9)
	v.SetDefault("matching.debug_logging", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}
	if config.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.burst must be positive, got: %d", config.RateLimit.Burst)
	}

	if config.Matching.Threshold <= 0 || config.Matching.Threshold > 1 {
		return fmt.Errorf("matching.threshold must be in (0, 1], got: %v", config.Matching.Threshold)
	}
	if config.Matching.DedupSimilarity <= 0 || config.Matching.DedupSimilarity > 1 {
		return fmt.Errorf("matching.dedup_similarity must be in (0, 1], got: %v", config.Matching.DedupSimilarity)
	}

	switch strings.ToLower(config.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log format must be 'text', 'json' or 'logfmt', got: %s", config.Log.Format)
	}

	if config.Extractor.Enabled() && config.Extractor.BaseURL == "" {
		return fmt.Errorf("extractor base URL is required when an API key is set (set VEGANSCAN_EXTRACTOR_BASE_URL)")
	}

	return nil
}
