package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gazette/internal/config"
	"gazette/internal/logger"
	"gazette/internal/models"
	"gazette/internal/store"
)

// Response keys of the find queries.
const (
	announcementsKey = "Announcements"
	articlesKey      = "Articles"
)

// Uploader is a store.Sink backed by Payload CMS. Records are matched on
// their natural keys, then created or updated.
type Uploader struct {
	client Client
	logger *logger.Logger
}

var _ store.Sink = (*Uploader)(nil)

// NewUploader creates a new uploader instance.
func NewUploader(endpoint, apiKey string, log *logger.Logger) *Uploader {
	return &Uploader{
		client: NewGraphQLClient(endpoint, apiKey, log),
		logger: log,
	}
}

// NewUploaderWithClient creates a new uploader with a custom client.
func NewUploaderWithClient(client Client, log *logger.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: log,
	}
}

// Open returns a store.Opener for the payload backend. Credentials, when
// configured, are exchanged for a session token before the sink is returned.
func Open(log *logger.Logger) store.Opener {
	return func(ctx context.Context, cfg config.StoreConfig) (store.Sink, error) {
		u := NewUploader(cfg.PayloadURL, cfg.PayloadAPIKey, log)

		if cfg.PayloadEmail != "" {
			if err := u.Authenticate(ctx, cfg.PayloadEmail, cfg.PayloadPassword); err != nil {
				return nil, err
			}
		}

		return u, nil
	}
}

// Authenticate logs in with email and password.
func (u *Uploader) Authenticate(ctx context.Context, email, password string) error {
	return u.client.Login(ctx, email, password)
}

// UpsertAnnouncement stores a under its entry id.
func (u *Uploader) UpsertAnnouncement(ctx context.Context, a *models.NormalizedAnnouncement) (store.Outcome, error) {
	existing, err := findFirst[Announcement](ctx, u.client, FindAnnouncementQuery, map[string]any{
		"entryId": a.EntryRef,
	}, announcementsKey)
	if err != nil {
		return "", fmt.Errorf("failed to find existing announcement: %w", err)
	}

	id := 0

	if existing != nil {
		id = existing.ID

		previous, err := existing.toModel()
		if err == nil && store.SameAnnouncement(previous, a) {
			return store.Unchanged, nil
		}
	}

	return u.save(ctx, CreateAnnouncementMutation, UpdateAnnouncementMutation, id, mapToAnnouncement(a))
}

// FindAnnouncement returns the stored announcement for entryRef.
func (u *Uploader) FindAnnouncement(ctx context.Context, entryRef string) (*models.NormalizedAnnouncement, error) {
	doc, err := findFirst[Announcement](ctx, u.client, FindAnnouncementQuery, map[string]any{
		"entryId": entryRef,
	}, announcementsKey)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, store.ErrNotFound
	}

	return doc.toModel()
}

// UpsertArticle stores article under its document id and number.
func (u *Uploader) UpsertArticle(ctx context.Context, article models.LegalArticle) (store.Outcome, error) {
	existing, err := findFirst[Article](ctx, u.client, FindArticleQuery, articleVars(article.DocumentRef, article.Number), articlesKey)
	if err != nil {
		return "", fmt.Errorf("failed to find existing article: %w", err)
	}

	id := 0

	if existing != nil {
		id = existing.ID

		previous, err := existing.toModel()
		if err == nil && store.SameArticle(*previous, article) {
			return store.Unchanged, nil
		}
	}

	return u.save(ctx, CreateArticleMutation, UpdateArticleMutation, id, mapToArticle(article))
}

// FindArticle returns the stored article.
func (u *Uploader) FindArticle(ctx context.Context, documentRef string, number models.ArticleNumber) (*models.LegalArticle, error) {
	doc, err := findFirst[Article](ctx, u.client, FindArticleQuery, articleVars(documentRef, number), articlesKey)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, store.ErrNotFound
	}

	return doc.toModel()
}

// Close releases idle connections of the underlying HTTP client.
func (u *Uploader) Close(context.Context) error {
	if gqlClient, ok := u.client.(*GraphQLClient); ok {
		gqlClient.CloseIdleConnections()
	}

	return nil
}

func (u *Uploader) save(ctx context.Context, createMutation, updateMutation string, existingID int, data any) (store.Outcome, error) {
	variables := map[string]any{
		"data": data,
	}

	if existingID > 0 {
		variables["id"] = existingID

		if _, err := u.client.Execute(ctx, updateMutation, variables); err != nil {
			return "", err
		}

		return store.Updated, nil
	}

	if _, err := u.client.Execute(ctx, createMutation, variables); err != nil {
		return "", err
	}

	return store.Created, nil
}

// --- Helpers ---

func articleVars(documentRef string, number models.ArticleNumber) map[string]any {
	return map[string]any{
		"documentId":    documentRef,
		"articleNumber": number.String(),
	}
}

// findFirst performs a find query and returns the first document under
// responseKey, or nil when there is none.
func findFirst[T any](ctx context.Context, client Client, query string, variables map[string]any, responseKey string) (*T, error) {
	resp, err := client.Execute(ctx, query, variables)
	if err != nil {
		return nil, err
	}

	wrapper, err := UnmarshalGraphQLData[map[string]struct {
		Docs []json.RawMessage `json:"docs"`
	}](resp)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	list, ok := (*wrapper)[responseKey]
	if !ok || len(list.Docs) == 0 {
		return nil, nil
	}

	var doc T
	if err := json.Unmarshal(list.Docs[0], &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", responseKey, err)
	}

	return &doc, nil
}
