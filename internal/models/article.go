// Package models defines the records produced by gazette ingestion.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Suffix is the Latin insertion suffix of an article number. Its numeric
// value is its rank in article ordering.
type Suffix int

// Known suffixes in ascending order.
const (
	SuffixNone Suffix = iota
	SuffixBis
	SuffixTer
	SuffixQuater
	SuffixQuinquies
	SuffixSexies
	SuffixSepties
	SuffixOcties
	SuffixNonies
	SuffixDecies
)

var suffixNames = [...]string{"", "bis", "ter", "quater", "quinquies", "sexies", "septies", "octies", "nonies", "decies"}

// String returns the canonical spelling, or "" for SuffixNone.
func (s Suffix) String() string {
	if s < 0 || int(s) >= len(suffixNames) {
		return ""
	}

	return suffixNames[s]
}

// ParseSuffix maps a suffix token to its rank. "quáter" is accepted as an
// alternate spelling of "quater".
func ParseSuffix(token string) (Suffix, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "quáter" {
		token = "quater"
	}

	for i, name := range suffixNames {
		if i > 0 && name == token {
			return Suffix(i), true
		}
	}

	return SuffixNone, false
}

// ArticleNumber is the composite key of an article inside one disposition.
type ArticleNumber struct {
	Base   int    `json:"base" bson:"base"`
	Suffix Suffix `json:"suffix" bson:"suffix"`
	Sub    int    `json:"sub,omitempty" bson:"sub,omitempty"`
}

// Less reports whether n sorts before other by (base, suffix, sub).
func (n ArticleNumber) Less(other ArticleNumber) bool {
	if n.Base != other.Base {
		return n.Base < other.Base
	}

	if n.Suffix != other.Suffix {
		return n.Suffix < other.Suffix
	}

	return n.Sub < other.Sub
}

// Compare returns -1, 0 or +1.
func (n ArticleNumber) Compare(other ArticleNumber) int {
	switch {
	case n.Less(other):
		return -1
	case other.Less(n):
		return 1
	default:
		return 0
	}
}

// String renders the normalized form, e.g. "3", "3 bis", "10 ter 2".
func (n ArticleNumber) String() string {
	parts := []string{strconv.Itoa(n.Base)}
	if n.Suffix != SuffixNone {
		parts = append(parts, n.Suffix.String())
	}

	if n.Sub > 0 {
		parts = append(parts, strconv.Itoa(n.Sub))
	}

	return strings.Join(parts, " ")
}

// ParseArticleNumber parses a normalized article number such as "3 bis" or
// "10 2".
func ParseArticleNumber(s string) (ArticleNumber, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 3 {
		return ArticleNumber{}, fmt.Errorf("invalid article number %q", s)
	}

	base, err := strconv.Atoi(fields[0])
	if err != nil || base < 0 {
		return ArticleNumber{}, fmt.Errorf("invalid article number %q", s)
	}

	n := ArticleNumber{Base: base}
	rest := fields[1:]

	if len(rest) > 0 {
		if suffix, ok := ParseSuffix(rest[0]); ok {
			n.Suffix = suffix
			rest = rest[1:]
		}
	}

	if len(rest) == 1 {
		sub, err := strconv.Atoi(rest[0])
		if err != nil || sub < 0 {
			return ArticleNumber{}, fmt.Errorf("invalid article number %q", s)
		}

		n.Sub = sub
		rest = rest[1:]
	}

	if len(rest) != 0 {
		return ArticleNumber{}, fmt.Errorf("invalid article number %q", s)
	}

	return n, nil
}

// LegalArticle is one article of a disposition.
type LegalArticle struct {
	DocumentRef string        `json:"documentRef" bson:"document_ref"`
	Number      ArticleNumber `json:"number" bson:"number"`
	NumberText  string        `json:"numberText" bson:"number_text"`
	Title       *string       `json:"title,omitempty" bson:"title,omitempty"`
	Content     string        `json:"content" bson:"content"`
}

// Key identifies the article across runs.
func (a LegalArticle) Key() string {
	return a.DocumentRef + "#" + a.Number.String()
}
