package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from path into the process environment if the
// file exists. Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overrides settings from GAZETTE_* environment variables. Secrets
// are expected to arrive this way rather than through the YAML file.
func (c *Config) ApplyEnv() {
	c.Gazette.BaseURL = getEnv("GAZETTE_BASE_URL", c.Gazette.BaseURL)
	c.Gazette.SectionCode = getEnv("GAZETTE_SECTION_CODE", c.Gazette.SectionCode)

	c.Cache.Backend = getEnv("GAZETTE_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisURL = getEnv("GAZETTE_REDIS_URL", c.Cache.RedisURL)
	c.Cache.RedisPassword = getEnv("GAZETTE_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("GAZETTE_REDIS_DB", c.Cache.RedisDB)

	c.Store.Backend = getEnv("GAZETTE_STORE_BACKEND", c.Store.Backend)
	c.Store.MongoURI = getEnv("GAZETTE_MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = getEnv("GAZETTE_MONGO_DATABASE", c.Store.MongoDatabase)
	c.Store.PayloadURL = getEnv("GAZETTE_PAYLOAD_URL", c.Store.PayloadURL)
	c.Store.PayloadAPIKey = getEnv("GAZETTE_PAYLOAD_API_KEY", c.Store.PayloadAPIKey)
	c.Store.PayloadEmail = getEnv("GAZETTE_PAYLOAD_EMAIL", c.Store.PayloadEmail)
	c.Store.PayloadPassword = getEnv("GAZETTE_PAYLOAD_PASSWORD", c.Store.PayloadPassword)

	c.Differ.MatchThreshold = getEnvFloat("GAZETTE_MATCH_THRESHOLD", c.Differ.MatchThreshold)
	c.Logging.Level = getEnv("GAZETTE_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("GAZETTE_LOG_FORMAT", c.Logging.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}

	return defaultValue
}
