package store

import (
	"context"
	"sort"
	"sync"

	"gazette/internal/models"
)

// Memory is an in-process Sink for tests and dry runs.
type Memory struct {
	mu            sync.RWMutex
	announcements map[string]*models.NormalizedAnnouncement
	articles      map[string]models.LegalArticle
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{
		announcements: make(map[string]*models.NormalizedAnnouncement),
		articles:      make(map[string]models.LegalArticle),
	}
}

func copyAnnouncement(a *models.NormalizedAnnouncement) *models.NormalizedAnnouncement {
	c := *a

	c.Origins = make(map[string]models.Origin, len(a.Origins))
	for k, v := range a.Origins {
		c.Origins[k] = v
	}

	return &c
}

// UpsertAnnouncement stores a under its entry reference.
func (m *Memory) UpsertAnnouncement(_ context.Context, a *models.NormalizedAnnouncement) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.announcements[a.EntryRef]
	if ok && SameAnnouncement(existing, a) {
		return Unchanged, nil
	}

	m.announcements[a.EntryRef] = copyAnnouncement(a)

	if ok {
		return Updated, nil
	}

	return Created, nil
}

// FindAnnouncement returns a copy of the stored announcement.
func (m *Memory) FindAnnouncement(_ context.Context, entryRef string) (*models.NormalizedAnnouncement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.announcements[entryRef]
	if !ok {
		return nil, ErrNotFound
	}

	return copyAnnouncement(a), nil
}

// UpsertArticle stores article under its document and number.
func (m *Memory) UpsertArticle(_ context.Context, article models.LegalArticle) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := article.Key()

	existing, ok := m.articles[key]
	if ok && SameArticle(existing, article) {
		return Unchanged, nil
	}

	m.articles[key] = article

	if ok {
		return Updated, nil
	}

	return Created, nil
}

// FindArticle returns the stored article.
func (m *Memory) FindArticle(_ context.Context, documentRef string, number models.ArticleNumber) (*models.LegalArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	article, ok := m.articles[models.LegalArticle{DocumentRef: documentRef, Number: number}.Key()]
	if !ok {
		return nil, ErrNotFound
	}

	return &article, nil
}

// Announcements returns every stored announcement ordered by entry reference.
func (m *Memory) Announcements() []*models.NormalizedAnnouncement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.NormalizedAnnouncement, 0, len(m.announcements))
	for _, a := range m.announcements {
		out = append(out, copyAnnouncement(a))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EntryRef < out[j].EntryRef })

	return out
}

// Articles returns the stored articles of documentRef in article order.
func (m *Memory) Articles(documentRef string) []models.LegalArticle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.LegalArticle

	for _, a := range m.articles {
		if a.DocumentRef == documentRef {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number.Less(out[j].Number) })

	return out
}

// Close is a no-op.
func (m *Memory) Close(context.Context) error { return nil }
