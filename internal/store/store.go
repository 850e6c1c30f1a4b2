// Package store persists announcements and articles with idempotent upserts
// keyed by natural identifiers: the published entry id, and the document id
// plus article number.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/models"
)

// Outcome is the effect of an upsert.
type Outcome string

// Upsert outcomes.
const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidBackend = errors.New("invalid store backend")
)

// Sink receives classified announcements and extracted articles.
type Sink interface {
	UpsertAnnouncement(ctx context.Context, a *models.NormalizedAnnouncement) (Outcome, error)
	// FindAnnouncement returns ErrNotFound when entryRef was never stored.
	FindAnnouncement(ctx context.Context, entryRef string) (*models.NormalizedAnnouncement, error)
	UpsertArticle(ctx context.Context, article models.LegalArticle) (Outcome, error)
	// FindArticle returns ErrNotFound when the article was never stored.
	FindArticle(ctx context.Context, documentRef string, number models.ArticleNumber) (*models.LegalArticle, error)
	Close(ctx context.Context) error
}

// Opener builds the payload sink. It is injected by the caller so this
// package does not depend on the CMS client.
type Opener func(ctx context.Context, cfg config.StoreConfig) (Sink, error)

// Open returns the sink selected by cfg.Backend. payload opens the "payload"
// backend and may be nil when that backend is not used.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger, payload Opener) (Sink, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "mongo":
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case "payload":
		if payload == nil {
			return nil, fmt.Errorf("%w: payload backend not available", ErrInvalidBackend)
		}

		return payload(ctx, cfg)
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
}

// SameAnnouncement reports whether a and b carry the same data. UpdatedAt is
// ignored and times are compared at millisecond precision in UTC, which is
// what survives a round trip through the database.
func SameAnnouncement(a, b *models.NormalizedAnnouncement) bool {
	if a == nil || b == nil {
		return a == b
	}

	return fingerprint(a) == fingerprint(b)
}

func fingerprint(a *models.NormalizedAnnouncement) string {
	c := *a
	c.UpdatedAt = time.Time{}
	c.PublishedOn = c.PublishedOn.UTC().Truncate(time.Millisecond)

	if len(c.Origins) == 0 {
		c.Origins = nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return string(data)
}

// SameArticle reports whether a and b have the same header and body.
func SameArticle(a, b models.LegalArticle) bool {
	if a.NumberText != b.NumberText || a.Content != b.Content {
		return false
	}

	if a.Title == nil || b.Title == nil {
		return a.Title == nil && b.Title == nil
	}

	return *a.Title == *b.Title
}
