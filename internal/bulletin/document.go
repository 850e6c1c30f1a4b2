package bulletin

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"gazette/internal/models"
)

const gazetteDateLayout = "20060102"

type xmlDocument struct {
	XMLName  xml.Name    `xml:"documento"`
	Meta     xmlMeta     `xml:"metadatos"`
	Analysis xmlAnalysis `xml:"analisis"`
	Text     xmlInner    `xml:"texto"`
}

type xmlMeta struct {
	ID              string   `xml:"identificador"`
	Title           string   `xml:"titulo"`
	Department      xmlCoded `xml:"departamento"`
	Rank            xmlCoded `xml:"rango"`
	DispositionDate string   `xml:"fecha_disposicion"`
	PublicationDate string   `xml:"fecha_publicacion"`
	StartPage       string   `xml:"pagina_inicial"`
	EndPage         string   `xml:"pagina_final"`
}

type xmlCoded struct {
	Code  string `xml:"codigo,attr"`
	Value string `xml:",chardata"`
}

type xmlAnalysis struct {
	Previous []xmlReference `xml:"referencias>anteriores>anterior"`
}

type xmlReference struct {
	ID   string   `xml:"referencia,attr"`
	Word xmlCoded `xml:"palabra"`
	Text string   `xml:"texto"`
}

type xmlInner struct {
	Inner string `xml:",innerxml"`
}

// parseDocument decodes a per-entry XML document.
func parseDocument(body []byte, fetchedAt time.Time) (*models.BulletinDocument, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.Strict = false
	decoder.CharsetReader = charset.NewReaderLabel

	var raw xmlDocument
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: document: %w", ErrMalformedUpstream, err)
	}

	id := strings.TrimSpace(raw.Meta.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: document without identificador", ErrMalformedUpstream)
	}

	doc := &models.BulletinDocument{
		DispositionDate: parseGazetteDate(raw.Meta.DispositionDate),
		PublishedOn:     parseGazetteDate(raw.Meta.PublicationDate),
		FetchedAt:       fetchedAt,
		ID:              id,
		Title:           collapse(raw.Meta.Title),
		Rank:            models.ParseLegalRank(raw.Meta.Rank.Value),
		RankLabel:       strings.TrimSpace(raw.Meta.Rank.Value),
		DepartmentName:  strings.TrimSpace(raw.Meta.Department.Value),
		Body:            PlainText(raw.Text.Inner),
		Markup:          raw.Text.Inner,
		References:      make([]models.Reference, 0, len(raw.Analysis.Previous)),
		StartPage:       atoiOrZero(raw.Meta.StartPage),
		EndPage:         atoiOrZero(raw.Meta.EndPage),
	}

	seen := make(map[string]bool)

	for _, ref := range raw.Analysis.Previous {
		refID := strings.TrimSpace(ref.ID)
		if refID == "" || seen[refID] {
			continue
		}

		seen[refID] = true
		doc.References = append(doc.References, models.Reference{
			ID:       refID,
			Relation: strings.ToLower(strings.TrimSpace(ref.Word.Value)),
			Text:     collapse(ref.Text),
		})
	}

	return doc, nil
}

func parseGazetteDate(s string) time.Time {
	t, err := time.Parse(gazetteDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}

	return t
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}

	return n
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
