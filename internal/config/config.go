// Package config provides configuration management for gazette ingestion.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL           = errors.New("gazette.base_url is required")
	ErrInvalidBaseURL           = errors.New("gazette.base_url must be an absolute http(s) URL")
	ErrMissingSectionCode       = errors.New("gazette.section_code is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidPacing            = errors.New("pacing delays must be non-negative")
	ErrInvalidRequestRate       = errors.New("pacing.requests_per_second must be positive")
	ErrInvalidThreshold         = errors.New("differ.match_threshold must be in (0, 100]")
	ErrInvalidCacheBackend      = errors.New("cache.backend must be one of: none, file, redis")
	ErrMissingCacheDir          = errors.New("cache.dir is required for the file backend")
	ErrMissingRedisURL          = errors.New("cache.redis_url is required for the redis backend")
	ErrInvalidStoreBackend      = errors.New("store.backend must be one of: memory, mongo, payload")
	ErrMissingMongoURI          = errors.New("store.mongo_uri is required for the mongo backend")
	ErrMissingPayloadURL        = errors.New("store.payload_url is required for the payload backend")
	ErrMissingCron              = errors.New("schedule.cron is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete ingestion configuration.
type Config struct {
	Gazette  GazetteConfig  `yaml:"gazette"`
	Retry    RetryPolicy    `yaml:"retry"`
	Pacing   PacingConfig   `yaml:"pacing"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Cache    CacheConfig    `yaml:"cache"`
	Store    StoreConfig    `yaml:"store"`
	Differ   DifferConfig   `yaml:"differ"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GazetteConfig describes the upstream gazette.
type GazetteConfig struct {
	BaseURL     string `yaml:"base_url"`
	SectionCode string `yaml:"section_code"`
	UserAgent   string `yaml:"user_agent"`
	MaxBodyKb   int    `yaml:"max_body_kb"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// PacingConfig keeps the batch within the gazette's fair-use expectations.
type PacingConfig struct {
	InterDateMs       int     `yaml:"inter_date_ms"`
	InterDocumentMs   int     `yaml:"inter_document_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// BreakerConfig configures the circuit breaker around upstream calls.
type BreakerConfig struct {
	MaxFailures    int `yaml:"max_failures"`
	OpenTimeoutSec int `yaml:"open_timeout_sec"`
}

// CacheConfig selects where fetched documents are kept.
type CacheConfig struct {
	Backend       string `yaml:"backend"`
	Dir           string `yaml:"dir"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLHours      int    `yaml:"ttl_hours"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend         string `yaml:"backend"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	PayloadURL      string `yaml:"payload_url"`
	PayloadAPIKey   string `yaml:"payload_api_key"`
	PayloadEmail    string `yaml:"payload_email"`
	PayloadPassword string `yaml:"payload_password"`
}

// DifferConfig configures article drift detection.
type DifferConfig struct {
	MatchThreshold float64 `yaml:"match_threshold"`
}

// ScheduleConfig configures the recurring ingestion job.
type ScheduleConfig struct {
	Cron           string `yaml:"cron"`
	Timezone       string `yaml:"timezone"`
	FetchDocuments bool   `yaml:"fetch_documents"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration that runs against the public gazette with
// in-memory storage.
func Default() *Config {
	return &Config{
		Gazette: GazetteConfig{
			BaseURL:     "https://www.boe.es",
			SectionCode: "2B",
			UserAgent:   "gazette-ingest/1.0",
			MaxBodyKb:   10240,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		},
		Pacing: PacingConfig{
			InterDateMs:       2000,
			InterDocumentMs:   500,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Breaker: BreakerConfig{
			MaxFailures:    5,
			OpenTimeoutSec: 60,
		},
		Cache: CacheConfig{
			Backend:  "none",
			Dir:      ".cache/gazette",
			TTLHours: 24 * 30,
		},
		Store: StoreConfig{
			Backend:       "memory",
			MongoDatabase: "gazette",
		},
		Differ: DifferConfig{
			MatchThreshold: 95,
		},
		Schedule: ScheduleConfig{
			Cron:           "0 9 * * 1-5",
			Timezone:       "Europe/Madrid",
			FetchDocuments: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default, then
// applies environment overrides and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Gazette.BaseURL == "" {
		return ErrMissingBaseURL
	}

	u, err := url.Parse(c.Gazette.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Gazette.BaseURL)
	}

	if c.Gazette.SectionCode == "" {
		return ErrMissingSectionCode
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Pacing.InterDateMs < 0 || c.Pacing.InterDocumentMs < 0 {
		return ErrInvalidPacing
	}

	if c.Pacing.RequestsPerSecond <= 0 {
		return ErrInvalidRequestRate
	}

	if c.Differ.MatchThreshold <= 0 || c.Differ.MatchThreshold > 100 {
		return ErrInvalidThreshold
	}

	switch c.Cache.Backend {
	case "", "none":
	case "file":
		if c.Cache.Dir == "" {
			return ErrMissingCacheDir
		}
	case "redis":
		if c.Cache.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheBackend, c.Cache.Backend)
	}

	switch c.Store.Backend {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case "payload":
		if c.Store.PayloadURL == "" {
			return ErrMissingPayloadURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreBackend, c.Store.Backend)
	}

	if strings.TrimSpace(c.Schedule.Cron) == "" {
		return ErrMissingCron
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// InterDate returns the pause between two ingested dates.
func (p *PacingConfig) InterDate() time.Duration {
	return time.Duration(p.InterDateMs) * time.Millisecond
}

// InterDocument returns the pause between two document fetches.
func (p *PacingConfig) InterDocument() time.Duration {
	return time.Duration(p.InterDocumentMs) * time.Millisecond
}

// TTL returns the cache entry lifetime, zero meaning no expiry.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// OpenTimeout returns how long the breaker stays open.
func (b *BreakerConfig) OpenTimeout() time.Duration {
	return time.Duration(b.OpenTimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{BaseURL: %s, Section: %s, MaxAttempts: %d, Cache: %s, Store: %s}",
		c.Gazette.BaseURL,
		c.Gazette.SectionCode,
		c.Retry.MaxAttempts,
		c.Cache.Backend,
		c.Store.Backend,
	)
}
