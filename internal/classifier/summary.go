package classifier

import (
	"fmt"
	"strings"

	"gazette/internal/models"
)

var typeLabels = map[models.AnnouncementType]string{
	models.TypeNewCall:        "Convocatoria",
	models.TypeAdmittedList:   "Lista de admitidos",
	models.TypeBoardAppointed: "Nombramiento de tribunal",
	models.TypeResults:        "Resultados",
	models.TypeCorrection:     "Corrección de errores",
	models.TypeOther:          "Otros",
}

var accessLabels = map[models.AccessMode]string{
	models.AccessOpen:       "Acceso libre",
	models.AccessInternal:   "Promoción interna",
	models.AccessMixed:      "Libre y promoción interna",
	models.AccessDisability: "Reserva discapacidad",
}

func categoryLabel(c models.Category) string {
	switch c {
	case models.CategoryUnknown:
		return ""
	case models.CategoryLabor:
		return "Personal laboral"
	case models.CategoryMultiple:
		return "Varios subgrupos"
	case models.CategoryE:
		return "Agrupaciones profesionales"
	}

	return "Subgrupo " + string(c)
}

func plazas(n int) string {
	if n == 1 {
		return "1 plaza"
	}

	return fmt.Sprintf("%d plazas", n)
}

func quotaLabel(q models.Quotas) string {
	if q.Total != nil {
		return plazas(*q.Total)
	}

	var parts []string

	if q.Open != nil {
		parts = append(parts, fmt.Sprintf("%d libre", *q.Open))
	}

	if q.InternalPromotion != nil {
		parts = append(parts, fmt.Sprintf("%d promoción interna", *q.InternalPromotion))
	}

	if q.Disability != nil {
		parts = append(parts, fmt.Sprintf("%d discapacidad", *q.Disability))
	}

	return strings.Join(parts, " + ")
}

func scopeLabel(s models.Scope) string {
	if s.Level == models.ScopeNational {
		return "Ámbito estatal"
	}

	var parts []string

	for _, p := range []*string{s.Municipality, s.Province, s.Region} {
		if p == nil {
			continue
		}

		if len(parts) > 0 && parts[len(parts)-1] == *p {
			continue
		}

		parts = append(parts, *p)
	}

	return strings.Join(parts, ", ")
}

// Summarize assembles a one-line summary from the resolved fields of a,
// skipping unknown ones. With nothing resolved it falls back to the issuing
// department.
func Summarize(a *models.NormalizedAnnouncement) string {
	parts := []string{typeLabels[a.Type]}

	if a.RelatedTrack != nil {
		parts = append(parts, *a.RelatedTrack)
	}

	parts = append(parts,
		categoryLabel(a.Category),
		accessLabels[a.AccessMode],
		quotaLabel(a.Quotas),
		scopeLabel(a.Scope),
	)

	var out []string

	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return a.Department
	}

	return strings.Join(out, " · ")
}

var (
	typeWeights = map[models.AnnouncementType]int{
		models.TypeNewCall:        40,
		models.TypeAdmittedList:   20,
		models.TypeResults:        15,
		models.TypeBoardAppointed: 10,
		models.TypeCorrection:     5,
		models.TypeOther:          5,
	}

	categoryWeights = map[models.Category]int{
		models.CategoryA1:       20,
		models.CategoryA2:       18,
		models.CategoryMultiple: 18,
		models.CategoryC1:       16,
		models.CategoryB:        14,
		models.CategoryC2:       14,
		models.CategoryE:        8,
		models.CategoryLabor:    8,
	}

	scopeWeights = map[models.ScopeLevel]int{
		models.ScopeNational: 15,
		models.ScopeRegional: 10,
		models.ScopeLocal:    5,
	}
)

// TotalPositions returns the advertised total, or the sum of the per-turn
// counts when only those are known.
func TotalPositions(q models.Quotas) (int, bool) {
	if q.Total != nil {
		return *q.Total, true
	}

	sum, known := 0, false

	for _, p := range []*int{q.Open, q.InternalPromotion} {
		if p != nil {
			sum += *p
			known = true
		}
	}

	return sum, known
}

// Score rates an announcement from 0 to 100 by type, category, number of
// positions and issuing body. It is the default sort order.
func Score(a *models.NormalizedAnnouncement) int {
	score := typeWeights[a.Type] + categoryWeights[a.Category] + scopeWeights[a.Scope.Level]

	if n, ok := TotalPositions(a.Quotas); ok {
		switch {
		case n >= 100:
			score += 25
		case n >= 20:
			score += 18
		case n >= 5:
			score += 12
		case n >= 1:
			score += 6
		}
	}

	return min(max(score, 0), 100)
}
