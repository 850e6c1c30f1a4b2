// Package articles splits the markup of one disposition into its numbered
// articles.
package articles

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gazette/internal/models"
)

// Reasons a block is dropped.
var (
	ErrUnrecognizedHeader = errors.New("unrecognized article header")
	ErrUnsupportedOrdinal = errors.New("unsupported ordinal")
	ErrDuplicateArticle   = errors.New("duplicate article number")
	ErrEmptyBlock         = errors.New("empty block")
)

// Block id shapes used by the gazette over the years: numeric ("a1",
// "a3bis", "a10-2"), spelled-out ordinal ("aprimero") and instruction or
// order prefixes ("ins-1", "ord_3").
var blockIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^a\d+[a-z]*(?:-\d+)?$`),
	regexp.MustCompile(`^a(?:primer|segund|tercer|cuart|quint|sext|s[eé]ptim|octav|noven|d[eé]cim|und[eé]cim|duod[eé]cim|vig[eé]sim|trig[eé]sim)[a-z0-9-]*$`),
	regexp.MustCompile(`^(?:ins|ord)[-_]?[a-z0-9]+$`),
}

const (
	headerSelector = "h1, h2, h3, h4, h5, h6, .articulo"

	// sibling-run dialect: an article starts at a header element and runs
	// until the next article or structural heading.
	runStartSelector = "p.articulo, h4.articulo, h5.articulo"
	runStopSelector  = ".articulo, [class^='capitulo'], [class^='titulo'], [class^='seccion'], [class^='anexo'], .firma_ministro, .firma_rey"
)

// DroppedBlock records a block that produced no article.
type DroppedBlock struct {
	Reason  error
	BlockID string
	Header  string
}

// Stats counts what happened to each block.
type Stats struct {
	Blocks             int
	Extracted          int
	Unrecognized       int
	UnsupportedOrdinal int
	Duplicates         int
	Empty              int
}

// Result is the outcome of one extraction.
type Result struct {
	Articles []models.LegalArticle
	Dropped  []DroppedBlock
	Stats    Stats
}

// Extractor turns disposition markup into ordered articles.
type Extractor struct {
	rules []headerRule
}

// NewExtractor returns an Extractor with the standard header rules.
func NewExtractor() *Extractor {
	return &Extractor{rules: defaultRules()}
}

// ExtractArticles is a convenience wrapper returning only the articles.
func ExtractArticles(markup string) []models.LegalArticle {
	return NewExtractor().Extract("", markup).Articles
}

// Extract segments markup into blocks, recognizes each block's header and
// returns the articles sorted by number. Unusable blocks are dropped and
// reported in the result; Extract never fails.
func (e *Extractor) Extract(documentRef, markup string) Result {
	result := Result{Articles: []models.LegalArticle{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return result
	}

	doc.Find(boilerplateSelector).Remove()

	seen := make(map[models.ArticleNumber]bool)

	for _, b := range segment(doc) {
		result.Stats.Blocks++

		article, err := e.buildArticle(documentRef, b)
		if err == nil && seen[article.Number] {
			err = fmt.Errorf("%w: %s", ErrDuplicateArticle, article.Number)
		}

		if err != nil {
			result.drop(b, err)

			continue
		}

		seen[article.Number] = true
		result.Articles = append(result.Articles, article)
		result.Stats.Extracted++
	}

	slices.SortStableFunc(result.Articles, func(a, b models.LegalArticle) int {
		return a.Number.Compare(b.Number)
	})

	return result
}

func (r *Result) drop(b block, err error) {
	switch {
	case errors.Is(err, ErrDuplicateArticle):
		r.Stats.Duplicates++
	case errors.Is(err, ErrUnsupportedOrdinal):
		r.Stats.UnsupportedOrdinal++
	case errors.Is(err, ErrEmptyBlock):
		r.Stats.Empty++
	default:
		r.Stats.Unrecognized++
	}

	r.Dropped = append(r.Dropped, DroppedBlock{Reason: err, BlockID: b.id, Header: b.line})
}

func (e *Extractor) buildArticle(documentRef string, b block) (models.LegalArticle, error) {
	line := b.line
	if line == "" {
		return models.LegalArticle{}, ErrEmptyBlock
	}

	h, err := matchHeader(e.rules, line)
	if err != nil {
		return models.LegalArticle{}, err
	}

	article := models.LegalArticle{
		DocumentRef: documentRef,
		Number:      h.number,
		NumberText:  h.text,
		Content:     b.body(),
	}

	if h.title != "" {
		title := h.title
		article.Title = &title
	}

	return article, nil
}

// block is one candidate article: either an element carrying a block id, or
// a header element plus the siblings that follow it.
type block struct {
	body func() string
	id   string
	line string
}

func segment(doc *goquery.Document) []block {
	var blocks []block

	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if !isBlockID(s.AttrOr("id", "")) || hasBlockAncestor(s) {
			return
		}

		blocks = append(blocks, idBlock(s))
	})

	if len(blocks) > 0 {
		return blocks
	}

	doc.Find(runStartSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, runBlock(s))
	})

	return blocks
}

func idBlock(s *goquery.Selection) block {
	id := s.AttrOr("id", "")

	if s.Is(headerSelector) {
		b := runBlock(s)
		b.id = id

		return b
	}

	hdr := s.Find(headerSelector).First()
	if hdr.Length() == 0 {
		hdr = s.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
			return strings.TrimSpace(p.Text()) != ""
		}).First()
	}

	if hdr.Length() == 0 {
		// No element structure: the first line of the block is the header.
		lines := strings.SplitN(cleanLines(nodeText(s.Nodes)), "\n", 2)
		b := block{id: id, line: lines[0]}
		b.body = func() string {
			if len(lines) < 2 {
				return ""
			}

			return lines[1]
		}

		return b
	}

	line := collapseSpaces(hdr.Text())
	hdr.Remove()

	return block{
		id:   id,
		line: line,
		body: func() string { return cleanLines(nodeText(s.Nodes)) },
	}
}

func runBlock(s *goquery.Selection) block {
	rest := s.NextUntil(runStopSelector)

	return block{
		line: collapseSpaces(s.Text()),
		body: func() string { return cleanLines(nodeText(rest.Nodes)) },
	}
}

func isBlockID(id string) bool {
	id = strings.ToLower(id)
	for _, p := range blockIDPatterns {
		if p.MatchString(id) {
			return true
		}
	}

	return false
}

func hasBlockAncestor(s *goquery.Selection) bool {
	found := false

	s.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if id, ok := p.Attr("id"); ok && isBlockID(id) {
			found = true

			return false
		}

		return true
	})

	return found
}

func isUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOrdinal)
}
