package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each body as <dir>/<sha256(url)>.body. Entries older than
// ttl are treated as missing; a zero ttl never expires.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileCache creates dir if needed.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty cache dir", ErrNotConfigured)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *FileCache) path(url string) string {
	return filepath.Join(c.dir, Key(url)+".body")
}

// Get returns the cached body of url.
func (c *FileCache) Get(_ context.Context, url string) ([]byte, bool, error) {
	p := c.path(url)

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false, nil
	}

	body, err := os.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return body, true, nil
}

// Set writes body atomically through a temp file and rename.
func (c *FileCache) Set(_ context.Context, url string, body []byte) error {
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp entry: %w", err)
	}

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry of url, if any.
func (c *FileCache) Delete(_ context.Context, url string) error {
	if err := os.Remove(c.path(url)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }
