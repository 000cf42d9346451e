// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "REVIEWLEDGER_"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	LogLevel     string
	LogFormat    string
	RedisURL     string
	RedisChannel string
	MaxRetries   int
	LockTimeout  time.Duration
	AuthorHeader string
	TraceLog     bool
}

// HasRedis returns true when change events should be published to Redis.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: REVIEWLEDGER_LISTEN_ADDR (127.0.0.1:8080),
// REVIEWLEDGER_DB_PATH (reviewledger.db), REVIEWLEDGER_LOG_LEVEL (info),
// REVIEWLEDGER_LOG_FORMAT (text), REVIEWLEDGER_REDIS_CHANNEL (reviewledger:review-status),
// REVIEWLEDGER_MAX_RETRIES (3), REVIEWLEDGER_LOCK_TIMEOUT (5s),
// REVIEWLEDGER_AUTHOR_HEADER (X-Remote-User), REVIEWLEDGER_TRACE_LOG (false). An empty REVIEWLEDGER_REDIS_URL
// disables change events.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:   lookup("LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:       lookup("DB_PATH", "reviewledger.db"),
		LogLevel:     strings.ToLower(lookup("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(lookup("LOG_FORMAT", "text")),
		RedisURL:     lookup("REDIS_URL", ""),
		RedisChannel: lookup("REDIS_CHANNEL", "reviewledger:review-status"),
		AuthorHeader: lookup("AUTHOR_HEADER", "X-Remote-User"),
		MaxRetries:   3,
		LockTimeout:  5 * time.Second,
	}

	if v, ok := os.LookupEnv(envPrefix + "MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%sMAX_RETRIES has invalid integer %q: %w", envPrefix, v, err)
		}
		cfg.MaxRetries = n
	}

	if v, ok := os.LookupEnv(envPrefix + "LOCK_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%sLOCK_TIMEOUT has invalid duration %q: %w", envPrefix, v, err)
		}
		cfg.LockTimeout = d
	}

	if v, ok := os.LookupEnv(envPrefix + "TRACE_LOG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%sTRACE_LOG has invalid boolean %q: %w", envPrefix, v, err)
		}
		cfg.TraceLog = b
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("%sMAX_RETRIES must be at least 1, got %d", envPrefix, c.MaxRetries)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("%sLOCK_TIMEOUT must be positive, got %s", envPrefix, c.LockTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%sLOG_LEVEL must be one of debug, info, warn, error, got %q", envPrefix, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT must be text or json, got %q", envPrefix, c.LogFormat)
	}
	if strings.TrimSpace(c.AuthorHeader) == "" {
		return fmt.Errorf("%sAUTHOR_HEADER must not be empty", envPrefix)
	}
	return nil
}

func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return fallback
}
