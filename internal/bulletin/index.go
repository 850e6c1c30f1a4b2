package bulletin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gazette/internal/models"
)

// oneOrMany decodes a JSON value that the gazette sends as a single object
// when a list has one element and as an array otherwise.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil

		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		*o = items

		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}

	*o = oneOrMany[T]{item}

	return nil
}

// link is either a bare URL string or an object carrying it in "texto".
type link string

func (l *link) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*l = link(s)

		return nil
	}

	var obj struct {
		Texto string `json:"texto"`
	}

	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*l = link(obj.Texto)

	return nil
}

type indexResponse struct {
	Status struct {
		Code string `json:"code"`
		Text string `json:"text"`
	} `json:"status"`
	Data *struct {
		Sumario *struct {
			Diario oneOrMany[indexDiary] `json:"diario"`
		} `json:"sumario"`
	} `json:"data"`
}

type indexDiary struct {
	Seccion oneOrMany[indexSection] `json:"seccion"`
}

type indexSection struct {
	Codigo       string                     `json:"codigo"`
	Nombre       string                     `json:"nombre"`
	Departamento oneOrMany[indexDepartment] `json:"departamento"`
}

type indexDepartment struct {
	Codigo   string                  `json:"codigo"`
	Nombre   string                  `json:"nombre"`
	Epigrafe oneOrMany[indexHeading] `json:"epigrafe"`
	Item     oneOrMany[indexItem]    `json:"item"`
}

type indexHeading struct {
	Nombre string               `json:"nombre"`
	Item   oneOrMany[indexItem] `json:"item"`
}

type indexItem struct {
	Identificador string `json:"identificador"`
	Titulo        string `json:"titulo"`
	URLPDF        link   `json:"url_pdf"`
	URLHTML       link   `json:"url_html"`
	URLXML        link   `json:"url_xml"`
}

// parseIndex decodes a daily index and keeps the entries of sectionCode.
// found reports whether the section exists in the index at all.
func parseIndex(body []byte, sectionCode string, date time.Time, resolve func(string) string) (entries []models.BulletinIndexEntry, found bool, err error) {
	var resp indexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("%w: daily index: %w", ErrMalformedUpstream, err)
	}

	if resp.Data == nil || resp.Data.Sumario == nil {
		return nil, false, fmt.Errorf("%w: daily index has no sumario (status %q)", ErrMalformedUpstream, resp.Status.Code)
	}

	entries = []models.BulletinIndexEntry{}

	for _, diary := range resp.Data.Sumario.Diario {
		for _, section := range diary.Seccion {
			if !strings.EqualFold(section.Codigo, sectionCode) {
				continue
			}

			found = true

			for _, dept := range section.Departamento {
				add := func(heading string, item indexItem) {
					if item.Identificador == "" {
						return
					}

					entries = append(entries, models.BulletinIndexEntry{
						PublishedOn:    date,
						ID:             strings.TrimSpace(item.Identificador),
						Title:          strings.TrimSpace(item.Titulo),
						DepartmentCode: dept.Codigo,
						DepartmentName: strings.TrimSpace(dept.Nombre),
						SectionCode:    section.Codigo,
						SectionName:    strings.TrimSpace(section.Nombre),
						Heading:        strings.TrimSpace(heading),
						HTMLURL:        resolve(string(item.URLHTML)),
						XMLURL:         resolve(string(item.URLXML)),
						PDFURL:         resolve(string(item.URLPDF)),
					})
				}

				for _, item := range dept.Item {
					add("", item)
				}

				for _, heading := range dept.Epigrafe {
					for _, item := range heading.Item {
						add(heading.Nombre, item)
					}
				}
			}
		}
	}

	return entries, found, nil
}
