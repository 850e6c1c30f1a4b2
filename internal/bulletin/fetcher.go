package bulletin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/models"
)

const (
	acceptJSON = "application/json"
	acceptXML  = "application/xml"
	acceptHTML = "text/html,application/xhtml+xml"
)

// Fetcher retrieves daily indexes and documents from the gazette.
type Fetcher struct {
	transport   *Transport
	base        *url.URL
	sectionCode string
	log         *logger.Logger
	now         func() time.Time
}

// NewFetcher returns a Fetcher for cfg.Gazette using transport.
func NewFetcher(cfg *config.Config, transport *Transport, log *logger.Logger) (*Fetcher, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Gazette.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid gazette base URL: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Fetcher{
		transport:   transport,
		base:        base,
		sectionCode: cfg.Gazette.SectionCode,
		log:         log,
		now:         time.Now,
	}, nil
}

// IndexURL is the daily index address for date.
func (f *Fetcher) IndexURL(date time.Time) string {
	return f.base.String() + "/datosabiertos/api/boe/sumario/" + date.Format(gazetteDateLayout)
}

// DocumentURL is the XML document address for a published identifier.
func (f *Fetcher) DocumentURL(id string) string {
	return f.base.String() + "/diario_boe/xml.php?id=" + url.QueryEscape(id)
}

// ConsolidatedURL is the consolidated law text address for id.
func (f *Fetcher) ConsolidatedURL(id string) string {
	return f.base.String() + "/buscar/act.php?id=" + url.QueryEscape(id)
}

// FetchDailyIndex returns the entries of the configured section published on
// date. A day without a gazette, or without that section, yields an empty
// list and a nil error.
func (f *Fetcher) FetchDailyIndex(ctx context.Context, date time.Time) ([]models.BulletinIndexEntry, error) {
	log := f.log.With("date", date.Format(time.DateOnly))

	body, err := f.transport.Get(ctx, f.IndexURL(date), acceptJSON)
	if errors.Is(err, ErrNotFound) {
		log.Debug("no gazette published")

		return []models.BulletinIndexEntry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetch daily index %s: %w", date.Format(time.DateOnly), err)
	}

	entries, found, err := parseIndex(body, f.sectionCode, date, f.resolve)
	if err != nil {
		return nil, fmt.Errorf("daily index %s: %w", date.Format(time.DateOnly), err)
	}

	if !found {
		log.Debug("section not published", "section", f.sectionCode)
	}

	return entries, nil
}

// FetchDocument downloads and parses the document of a published identifier.
// Only bodies that parse are cached.
func (f *Fetcher) FetchDocument(ctx context.Context, id string) (*models.BulletinDocument, error) {
	var doc *models.BulletinDocument

	_, err := f.transport.Cached(ctx, f.DocumentURL(id), acceptXML, func(body []byte) error {
		parsed, err := parseDocument(body, f.now())
		if err != nil {
			return err
		}

		doc = parsed

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}

	return doc, nil
}

// FetchConsolidated returns the consolidated HTML text of a law, suitable
// for the article extractor.
func (f *Fetcher) FetchConsolidated(ctx context.Context, id string) (string, error) {
	body, err := f.transport.Cached(ctx, f.ConsolidatedURL(id), acceptHTML, checkNotEmpty)
	if err != nil {
		return "", fmt.Errorf("consolidated text %s: %w", id, err)
	}

	return string(body), nil
}

func checkNotEmpty(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedUpstream)
	}

	return nil
}

// resolve turns a possibly relative link into an absolute one.
func (f *Fetcher) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return f.base.ResolveReference(u).String()
}
