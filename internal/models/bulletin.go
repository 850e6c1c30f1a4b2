package models

import (
	"strings"
	"time"
)

// BulletinIndexEntry is one row of a day's gazette index.
type BulletinIndexEntry struct {
	PublishedOn    time.Time `json:"publishedOn"`
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	DepartmentCode string    `json:"departmentCode"`
	DepartmentName string    `json:"departmentName"`
	SectionCode    string    `json:"sectionCode"`
	SectionName    string    `json:"sectionName"`
	Heading        string    `json:"heading"`
	HTMLURL        string    `json:"htmlUrl"`
	XMLURL         string    `json:"xmlUrl"`
	PDFURL         string    `json:"pdfUrl"`
}

// LegalRank is the rank of a disposition.
type LegalRank string

// Known ranks.
const (
	RankUnknown        LegalRank = "unknown"
	RankLaw            LegalRank = "law"
	RankOrganicLaw     LegalRank = "organic-law"
	RankRoyalDecreeLaw LegalRank = "royal-decree-law"
	RankRoyalDecree    LegalRank = "royal-decree"
	RankDecree         LegalRank = "decree"
	RankOrder          LegalRank = "order"
	RankResolution     LegalRank = "resolution"
	RankInstruction    LegalRank = "instruction"
	RankAgreement      LegalRank = "agreement"
	RankAnnouncement   LegalRank = "announcement"
	RankCorrection     LegalRank = "correction"
)

// rankPrefixes is checked in order; longer names come first.
var rankPrefixes = []struct {
	prefix string
	rank   LegalRank
}{
	{"ley organica", RankOrganicLaw},
	{"ley orgánica", RankOrganicLaw},
	{"real decreto-ley", RankRoyalDecreeLaw},
	{"real decreto ley", RankRoyalDecreeLaw},
	{"real decreto legislativo", RankRoyalDecree},
	{"real decreto", RankRoyalDecree},
	{"decreto", RankDecree},
	{"ley", RankLaw},
	{"orden", RankOrder},
	{"resolucion", RankResolution},
	{"resolución", RankResolution},
	{"instruccion", RankInstruction},
	{"instrucción", RankInstruction},
	{"acuerdo", RankAgreement},
	{"anuncio", RankAnnouncement},
	{"correccion", RankCorrection},
	{"corrección", RankCorrection},
}

// ParseLegalRank maps the gazette's rank label to a LegalRank.
func ParseLegalRank(label string) LegalRank {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return RankUnknown
	}

	for _, p := range rankPrefixes {
		if strings.HasPrefix(l, p.prefix) {
			return p.rank
		}
	}

	return RankUnknown
}

// Reference links a document to an earlier published identifier.
type Reference struct {
	ID       string `json:"id"`
	Relation string `json:"relation,omitempty"`
	Text     string `json:"text,omitempty"`
}

// BulletinDocument is the fully fetched body of an index entry.
type BulletinDocument struct {
	DispositionDate time.Time   `json:"dispositionDate"`
	PublishedOn     time.Time   `json:"publishedOn"`
	FetchedAt       time.Time   `json:"fetchedAt"`
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Rank            LegalRank   `json:"rank"`
	RankLabel       string      `json:"rankLabel"`
	DepartmentName  string      `json:"departmentName"`
	Body            string      `json:"body"`
	Markup          string      `json:"-"`
	References      []Reference `json:"references"`
	StartPage       int         `json:"startPage"`
	EndPage         int         `json:"endPage"`
}

// ReferencedIDs returns the published identifiers the document references.
func (d *BulletinDocument) ReferencedIDs() []string {
	ids := make([]string, 0, len(d.References))
	for _, r := range d.References {
		ids = append(ids, r.ID)
	}

	return ids
}
