// Package config loads service configuration from an optional config file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      JWTConfig       `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Matching  MatchingConfig  `mapstructure:"matching"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       bool          `mapstructure:"rate_limit"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// EmbeddingConfig configures the embedding provider and background worker.
type EmbeddingConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Concurrency   int           `mapstructure:"concurrency"`
}

// RedisConfig configures the embedding cache. An empty URL disables caching.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MatchingConfig tunes batch ranking.
type MatchingConfig struct {
	// ParallelThreshold is the batch size at which scoring fans out.
	ParallelThreshold int `mapstructure:"parallel_threshold"`
	Parallelism       int `mapstructure:"parallelism"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                  "PORT",
	"database.url":                 "DATABASE_URL",
	"embedding.api_key":            "GEMINI_API_KEY",
	"embedding.model":              "EMBEDDING_MODEL",
	"embedding.max_input_chars":    "EMBEDDING_MAX_INPUT_CHARS",
	"embedding.retry_attempts":     "EMBEDDING_RETRY_ATTEMPTS",
	"embedding.retry_delay":        "EMBEDDING_RETRY_DELAY",
	"embedding.concurrency":        "EMBEDDING_CONCURRENCY",
	"redis.url":                    "REDIS_URL",
	"redis.cache_ttl":              "REDIS_CACHE_TTL",
	"auth.secret":                  "JWT_SECRET",
	"auth.expiration_hours":        "JWT_EXPIRATION_HOURS",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
	"server.rate_limit":            "RATE_LIMIT_ENABLED",
	"matching.parallel_threshold":  "MATCHING_PARALLEL_THRESHOLD",
	"matching.parallelism":         "MATCHING_PARALLELISM",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", true)
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.max_input_chars", 8000)
	v.SetDefault("embedding.retry_attempts", 3)
	v.SetDefault("embedding.retry_delay", time.Second)
	v.SetDefault("embedding.concurrency", 4)
	v.SetDefault("redis.cache_ttl", 7*24*time.Hour)
	v.SetDefault("auth.expiration_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("matching.parallel_threshold", 16)
	v.SetDefault("matching.parallelism", 0)
}

// Load reads .env (if present), then the optional config file at path, then
// environment overrides, and validates the result. An empty path skips the
// config file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Secrets and URLs are checked by the commands
// that need them, since offline commands run without a database or API key.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Embedding.MaxInputChars < 1 {
		errs = append(errs, fmt.Errorf("embedding.max_input_chars must be positive, got %d", c.Embedding.MaxInputChars))
	}
	if c.Embedding.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("embedding.retry_attempts must be at least 1, got %d", c.Embedding.RetryAttempts))
	}
	if c.Embedding.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("embedding.retry_delay must not be negative"))
	}
	if c.Embedding.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("embedding.concurrency must be at least 1, got %d", c.Embedding.Concurrency))
	}
	if c.Auth.ExpirationHours < 1 {
		errs = append(errs, fmt.Errorf("auth.expiration_hours must be at least 1 hour, got %d", c.Auth.ExpirationHours))
	}
	if c.Matching.ParallelThreshold < 0 {
		errs = append(errs, fmt.Errorf("matching.parallel_threshold must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	return nil
}

// Address returns the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}
