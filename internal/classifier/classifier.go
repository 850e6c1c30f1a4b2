// Package classifier turns gazette index entries and their documents into
// structured competition announcements. Every detector is pure and returns
// an explicit unknown value when the text gives no evidence.
package classifier

import (
	"strings"
	"time"

	"gazette/internal/models"
)

// DefaultLeadLines is how many body lines the content pass reads. The
// opening paragraphs carry the call's terms; later bases mention other
// groups and turns only as requirements.
const DefaultLeadLines = 15

// candidate is what one pass detected, before merging.
type candidate struct {
	Track      *string
	Type       models.AnnouncementType
	Category   models.Category
	AccessMode models.AccessMode
	Scope      models.Scope
	Quotas     models.Quotas
}

func detect(department, text string) candidate {
	return candidate{
		Track:      DetectTrack(text),
		Type:       DetectType(text),
		Category:   DetectCategory(text),
		AccessMode: DetectAccessMode(text),
		Scope:      DetectScope(department, text),
		Quotas:     DetectQuotas(text),
	}
}

// Classifier builds NormalizedAnnouncements.
type Classifier struct {
	leadLines int
	now       func() time.Time
}

// New returns a Classifier reading leadLines body lines in the content pass.
// A non-positive value uses DefaultLeadLines.
func New(leadLines int) *Classifier {
	if leadLines <= 0 {
		leadLines = DefaultLeadLines
	}

	return &Classifier{leadLines: leadLines, now: time.Now}
}

// Classify runs the title-only pass over an index entry.
func (c *Classifier) Classify(entry models.BulletinIndexEntry) *models.NormalizedAnnouncement {
	a := c.base(entry)

	merger{a}.apply(detect(entry.DepartmentName, titleEvidence(entry)), models.OriginTitle)
	c.finish(a)

	return a
}

// Refine runs the content pass with doc and merges it over previous, which
// may be nil or the result of an earlier pass. Fields previously resolved
// from content are only replaced by new content evidence.
func (c *Classifier) Refine(previous *models.NormalizedAnnouncement, entry models.BulletinIndexEntry, doc *models.BulletinDocument) *models.NormalizedAnnouncement {
	a := c.base(entry)

	if previous != nil {
		a = clone(previous)
		a.Department = firstNonEmpty(entry.DepartmentName, a.Department)
		a.HTMLURL = firstNonEmpty(entry.HTMLURL, a.HTMLURL)
		a.XMLURL = firstNonEmpty(entry.XMLURL, a.XMLURL)
		a.PDFURL = firstNonEmpty(entry.PDFURL, a.PDFURL)
	}

	m := merger{a}
	m.apply(detect(entry.DepartmentName, titleEvidence(entry)), models.OriginTitle)

	if doc != nil {
		department := firstNonEmpty(doc.DepartmentName, entry.DepartmentName)

		content := detect(department, c.contentEvidence(doc))
		if content.Type == models.TypeUnknown || content.Type == models.TypeOther {
			if isCorrection(doc) {
				content.Type = models.TypeCorrection
			}
		}

		m.apply(content, models.OriginContent)

		if doc.Title != "" && a.OriginOf(models.FieldType) == models.OriginContent {
			a.CleanTitle = CleanTitle(doc.Title)
		}
	}

	c.finish(a)

	return a
}

func (c *Classifier) base(entry models.BulletinIndexEntry) *models.NormalizedAnnouncement {
	return &models.NormalizedAnnouncement{
		PublishedOn: entry.PublishedOn,
		Origins:     make(map[string]models.Origin),
		EntryRef:    entry.ID,
		Type:        models.TypeUnknown,
		Category:    models.CategoryUnknown,
		AccessMode:  models.AccessUnknown,
		CleanTitle:  CleanTitle(entry.Title),
		Department:  entry.DepartmentName,
		HTMLURL:     entry.HTMLURL,
		XMLURL:      entry.XMLURL,
		PDFURL:      entry.PDFURL,
		Scope:       models.Scope{Level: models.ScopeUnknown},
	}
}

func (c *Classifier) finish(a *models.NormalizedAnnouncement) {
	a.RelevanceScore = Score(a)
	a.Summary = Summarize(a)
	a.UpdatedAt = c.now().UTC()
}

func (c *Classifier) contentEvidence(doc *models.BulletinDocument) string {
	lines := strings.SplitN(doc.Body, "\n", c.leadLines+1)
	if len(lines) > c.leadLines {
		lines = lines[:c.leadLines]
	}

	return doc.Title + "\n" + strings.Join(lines, "\n")
}

func titleEvidence(entry models.BulletinIndexEntry) string {
	return entry.Title + "\n" + entry.Heading
}

// isCorrection reports whether doc formally corrects an earlier entry.
func isCorrection(doc *models.BulletinDocument) bool {
	if doc.Rank == models.RankCorrection {
		return true
	}

	for _, ref := range doc.References {
		if strings.HasPrefix(ref.Relation, "corrige") {
			return true
		}
	}

	return false
}

func clone(a *models.NormalizedAnnouncement) *models.NormalizedAnnouncement {
	out := *a

	out.Origins = make(map[string]models.Origin, len(a.Origins))
	for k, v := range a.Origins {
		out.Origins[k] = v
	}

	return &out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
