package payload

import (
	"fmt"
	"sort"
	"time"

	"gazette/internal/models"
)

// Scope represents the scope group of an announcement.
type Scope struct {
	Region       *string `json:"region"`
	Province     *string `json:"province"`
	Municipality *string `json:"municipality"`
	Level        string  `json:"level"`
}

// Quotas represents the quotas group of an announcement.
type Quotas struct {
	Total             *int `json:"total"`
	Open              *int `json:"open"`
	InternalPromotion *int `json:"internalPromotion"`
	Disability        *int `json:"disability"`
}

// FieldOrigin is one row of the origins array.
type FieldOrigin struct {
	Field  string `json:"field"`
	Origin string `json:"origin"`
}

// Announcement represents the Announcements collection.
type Announcement struct {
	RelatedTrack   *string       `json:"relatedTrack"`
	UpdatedAt      string        `json:"updatedAt,omitempty"`
	EntryID        string        `json:"entryId"`
	PublishedOn    string        `json:"publishedOn"`
	Type           string        `json:"type"`
	Category       string        `json:"category"`
	AccessMode     string        `json:"accessMode"`
	CleanTitle     string        `json:"cleanTitle"`
	Summary        string        `json:"summary"`
	Department     string        `json:"department"`
	HTMLURL        string        `json:"htmlUrl"`
	XMLURL         string        `json:"xmlUrl"`
	PDFURL         string        `json:"pdfUrl"`
	Scope          Scope         `json:"scope"`
	Quotas         Quotas        `json:"quotas"`
	Origins        []FieldOrigin `json:"origins"`
	RelevanceScore int           `json:"relevanceScore"`
	ID             int           `json:"id,omitempty"`
}

// Article represents the Articles collection.
type Article struct {
	Title         *string `json:"title"`
	DocumentID    string  `json:"documentId"`
	ArticleNumber string  `json:"articleNumber"`
	NumberText    string  `json:"numberText"`
	Content       string  `json:"content"`
	ID            int     `json:"id,omitempty"`
}

func parseOrigin(s string) models.Origin {
	switch s {
	case "title":
		return models.OriginTitle
	case "content":
		return models.OriginContent
	default:
		return models.OriginNone
	}
}

func mapToAnnouncement(a *models.NormalizedAnnouncement) Announcement {
	doc := Announcement{
		RelatedTrack:   a.RelatedTrack,
		EntryID:        a.EntryRef,
		PublishedOn:    a.PublishedOn.UTC().Format(time.RFC3339Nano),
		Type:           string(a.Type),
		Category:       string(a.Category),
		AccessMode:     string(a.AccessMode),
		CleanTitle:     a.CleanTitle,
		Summary:        a.Summary,
		Department:     a.Department,
		HTMLURL:        a.HTMLURL,
		XMLURL:         a.XMLURL,
		PDFURL:         a.PDFURL,
		RelevanceScore: a.RelevanceScore,
		Scope: Scope{
			Region:       a.Scope.Region,
			Province:     a.Scope.Province,
			Municipality: a.Scope.Municipality,
			Level:        string(a.Scope.Level),
		},
		Quotas: Quotas{
			Total:             a.Quotas.Total,
			Open:              a.Quotas.Open,
			InternalPromotion: a.Quotas.InternalPromotion,
			Disability:        a.Quotas.Disability,
		},
		Origins: make([]FieldOrigin, 0, len(a.Origins)),
	}

	for field, origin := range a.Origins {
		doc.Origins = append(doc.Origins, FieldOrigin{Field: field, Origin: origin.String()})
	}

	sort.Slice(doc.Origins, func(i, j int) bool { return doc.Origins[i].Field < doc.Origins[j].Field })

	return doc
}

func (d Announcement) toModel() (*models.NormalizedAnnouncement, error) {
	published, err := time.Parse(time.RFC3339Nano, d.PublishedOn)
	if err != nil {
		return nil, fmt.Errorf("announcement %s: invalid publishedOn: %w", d.EntryID, err)
	}

	a := &models.NormalizedAnnouncement{
		PublishedOn:    published.UTC(),
		Origins:        make(map[string]models.Origin, len(d.Origins)),
		RelatedTrack:   d.RelatedTrack,
		EntryRef:       d.EntryID,
		Type:           models.AnnouncementType(d.Type),
		Category:       models.Category(d.Category),
		AccessMode:     models.AccessMode(d.AccessMode),
		CleanTitle:     d.CleanTitle,
		Summary:        d.Summary,
		Department:     d.Department,
		HTMLURL:        d.HTMLURL,
		XMLURL:         d.XMLURL,
		PDFURL:         d.PDFURL,
		RelevanceScore: d.RelevanceScore,
		Scope: models.Scope{
			Region:       d.Scope.Region,
			Province:     d.Scope.Province,
			Municipality: d.Scope.Municipality,
			Level:        models.ScopeLevel(d.Scope.Level),
		},
		Quotas: models.Quotas{
			Total:             d.Quotas.Total,
			Open:              d.Quotas.Open,
			InternalPromotion: d.Quotas.InternalPromotion,
			Disability:        d.Quotas.Disability,
		},
	}

	if d.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, d.UpdatedAt); err == nil {
			a.UpdatedAt = t.UTC()
		}
	}

	for _, o := range d.Origins {
		if origin := parseOrigin(o.Origin); origin != models.OriginNone {
			a.Origins[o.Field] = origin
		}
	}

	return a, nil
}

func mapToArticle(a models.LegalArticle) Article {
	return Article{
		Title:         a.Title,
		DocumentID:    a.DocumentRef,
		ArticleNumber: a.Number.String(),
		NumberText:    a.NumberText,
		Content:       a.Content,
	}
}

func (d Article) toModel() (*models.LegalArticle, error) {
	number, err := models.ParseArticleNumber(d.ArticleNumber)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", d.DocumentID, err)
	}

	return &models.LegalArticle{
		DocumentRef: d.DocumentID,
		Number:      number,
		NumberText:  d.NumberText,
		Title:       d.Title,
		Content:     d.Content,
	}, nil
}
