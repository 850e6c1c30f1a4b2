// Package cache keeps raw upstream responses so re-running a date range does
// not download the same documents again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"gazette/internal/config"
)

// ErrNotConfigured is returned by a backend missing its required settings.
var ErrNotConfigured = errors.New("cache not configured")

// Cache stores response bodies by URL.
type Cache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, body []byte) error
	Delete(ctx context.Context, url string) error
	Close() error
}

// New builds the backend selected in cfg. A "none" or empty backend returns
// a Nop cache.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return Nop{}, nil
	case "file":
		return NewFileCache(cfg.Dir, cfg.TTL())
	case "redis":
		return NewRedisCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.TTL())
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNotConfigured, cfg.Backend)
	}
}

// Key returns the stable cache key of a URL.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))

	return hex.EncodeToString(h[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Delete(context.Context, string) error              { return nil }
func (Nop) Close() error                                      { return nil }
