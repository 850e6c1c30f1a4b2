package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gazette/internal/logger"
	"gazette/internal/models"
)

const (
	announcementsCollection = "announcements"
	articlesCollection      = "articles"
	connectTimeout          = 10 * time.Second
)

// Mongo is a Sink backed by MongoDB.
type Mongo struct {
	client        *mongo.Client
	announcements *mongo.Collection
	articles      *mongo.Collection
	log           *logger.Logger
}

// articleRecord flattens the article number so the upsert filter and the
// unique index see every component, including a zero sub-number.
type articleRecord struct {
	UpdatedAt     time.Time `bson:"updated_at"`
	Title         *string   `bson:"title,omitempty"`
	DocumentRef   string    `bson:"document_ref"`
	NumberText    string    `bson:"number_text"`
	Content       string    `bson:"content"`
	ArticleBase   int       `bson:"article_base"`
	ArticleSuffix int       `bson:"article_suffix"`
	ArticleSub    int       `bson:"article_sub"`
}

func toRecord(a models.LegalArticle) articleRecord {
	return articleRecord{
		Title:         a.Title,
		DocumentRef:   a.DocumentRef,
		NumberText:    a.NumberText,
		Content:       a.Content,
		ArticleBase:   a.Number.Base,
		ArticleSuffix: int(a.Number.Suffix),
		ArticleSub:    a.Number.Sub,
	}
}

func (r articleRecord) article() models.LegalArticle {
	return models.LegalArticle{
		DocumentRef: r.DocumentRef,
		Number: models.ArticleNumber{
			Base:   r.ArticleBase,
			Suffix: models.Suffix(r.ArticleSuffix),
			Sub:    r.ArticleSub,
		},
		NumberText: r.NumberText,
		Title:      r.Title,
		Content:    r.Content,
	}
}

func articleFilter(documentRef string, n models.ArticleNumber) bson.M {
	return bson.M{
		"document_ref":   documentRef,
		"article_base":   n.Base,
		"article_suffix": int(n.Suffix),
		"article_sub":    n.Sub,
	}
}

// NewMongo connects to uri, checks the connection and ensures the unique
// indexes exist.
func NewMongo(ctx context.Context, uri, database string, log *logger.Logger) (*Mongo, error) {
	if log == nil {
		log = logger.Discard()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:        client,
		announcements: db.Collection(announcementsCollection),
		articles:      db.Collection(articlesCollection),
		log:           log,
	}

	if err := m.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Info("connected to MongoDB", "database", database)

	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	_, err := m.announcements.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entry_ref", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "published_on", Value: -1}, {Key: "relevance_score", Value: -1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = m.articles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "document_ref", Value: 1},
				{Key: "article_base", Value: 1},
				{Key: "article_suffix", Value: 1},
				{Key: "article_sub", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})

	return err
}

// UpsertAnnouncement writes a keyed by entry_ref.
func (m *Mongo) UpsertAnnouncement(ctx context.Context, a *models.NormalizedAnnouncement) (Outcome, error) {
	existing, err := m.FindAnnouncement(ctx, a.EntryRef)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if existing != nil && SameAnnouncement(existing, a) {
		return Unchanged, nil
	}

	res, err := m.announcements.UpdateOne(ctx,
		bson.M{"entry_ref": a.EntryRef},
		bson.M{"$set": a},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert announcement %s: %w", a.EntryRef, err)
	}

	if res.UpsertedCount > 0 {
		return Created, nil
	}

	return Updated, nil
}

// FindAnnouncement loads the announcement stored under entryRef.
func (m *Mongo) FindAnnouncement(ctx context.Context, entryRef string) (*models.NormalizedAnnouncement, error) {
	var a models.NormalizedAnnouncement

	err := m.announcements.FindOne(ctx, bson.M{"entry_ref": entryRef}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load announcement %s: %w", entryRef, err)
	}

	return &a, nil
}

// UpsertArticle writes article keyed by document and number.
func (m *Mongo) UpsertArticle(ctx context.Context, article models.LegalArticle) (Outcome, error) {
	existing, err := m.FindArticle(ctx, article.DocumentRef, article.Number)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if existing != nil && SameArticle(*existing, article) {
		return Unchanged, nil
	}

	rec := toRecord(article)
	rec.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": rec}
	if rec.Title == nil {
		update["$unset"] = bson.M{"title": ""}
	}

	res, err := m.articles.UpdateOne(ctx,
		articleFilter(article.DocumentRef, article.Number),
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert article %s: %w", article.Key(), err)
	}

	if res.UpsertedCount > 0 {
		return Created, nil
	}

	return Updated, nil
}

// FindArticle loads one article.
func (m *Mongo) FindArticle(ctx context.Context, documentRef string, number models.ArticleNumber) (*models.LegalArticle, error) {
	var rec articleRecord

	err := m.articles.FindOne(ctx, articleFilter(documentRef, number)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load article %s#%s: %w", documentRef, number, err)
	}

	article := rec.article()

	return &article, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
