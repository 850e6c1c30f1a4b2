package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gazette/internal/models"
	"gazette/internal/normalizer"
	"gazette/internal/numerals"
)

// padded returns the normalized text surrounded by spaces so phrases can be
// matched on word boundaries with a plain substring search.
func padded(text string) string {
	return " " + normalizer.NormalizeText(text) + " "
}

func containsAny(p string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(p, " "+phrase+" ") {
			return true
		}
	}

	return false
}

// typeRules are tried in order. Corrections and lists name the call they
// belong to, so they must be recognized before the call itself.
var typeRules = []struct {
	kind    models.AnnouncementType
	phrases []string
}{
	{models.TypeCorrection, []string{
		"correccion de errores", "correccion de error", "se corrigen errores", "se corrige error",
		"se corrigen los errores", "se corrige el error", "se rectifica",
	}},
	{models.TypeAdmittedList, []string{
		"admitidos y excluidos", "admitidas y excluidas", "lista de admitidos", "relacion de admitidos",
		"lista provisional", "lista definitiva", "relacion provisional", "relacion definitiva",
		"aspirantes admitidos",
	}},
	{models.TypeResults, []string{
		"relacion de aprobados", "lista de aprobados", "aspirantes aprobados", "han superado",
		"se nombran funcionarios", "se nombra funcionario", "se nombra funcionaria", "nombran funcionarios de carrera",
		"se resuelve el concurso", "se resuelve la convocatoria", "se resuelve el proceso",
		"se adjudican", "adjudicacion de", "seleccionados",
	}},
	{models.TypeBoardAppointed, []string{
		"tribunal calificador", "nombra el tribunal", "nombra al tribunal", "nombramiento del tribunal",
		"composicion del tribunal", "comision de seleccion", "organo de seleccion", "tribunales calificadores",
	}},
	{models.TypeNewCall, []string{
		"se convoca", "se convocan", "convocatoria", "convocar", "se anuncia la convocatoria",
		"bases de la convocatoria", "bases especificas", "bases generales", "proceso selectivo",
		"para proveer", "para cubrir",
	}},
	{models.TypeOther, []string{
		"oferta de empleo publico", "se declara desierto", "se declara desierta", "se deja sin efecto",
		"bolsa de trabajo", "bolsa de empleo",
	}},
}

// DetectType returns the kind of announcement text describes, or TypeUnknown
// when no phrase supports any kind.
func DetectType(text string) models.AnnouncementType {
	p := padded(text)

	for _, rule := range typeRules {
		if containsAny(p, rule.phrases...) {
			return rule.kind
		}
	}

	return models.TypeUnknown
}

var categoryCodes = map[string]models.Category{
	"a1": models.CategoryA1,
	"a2": models.CategoryA2,
	"b":  models.CategoryB,
	"c1": models.CategoryC1,
	"c2": models.CategoryC2,
}

var groupKeywords = map[string]bool{"grupo": true, "grupos": true, "subgrupo": true, "subgrupos": true}

// DetectCategory returns the pay-grade category named in text. Several
// distinct categories give CategoryMultiple.
func DetectCategory(text string) models.Category {
	p := padded(text)
	tokens := strings.Fields(p)
	found := make(map[models.Category]bool)

	for i, tok := range tokens {
		if !groupKeywords[tok] {
			continue
		}

		for j := i + 1; j < len(tokens); j++ {
			t := tokens[j]
			if c, ok := categoryCodes[t]; ok {
				found[c] = true

				continue
			}

			// "e" is only a category right after the keyword, elsewhere it is
			// a conjunction.
			if t == "e" && j == i+1 {
				found[models.CategoryE] = true

				continue
			}

			if t == "y" || t == "e" || t == "o" {
				continue
			}

			break
		}
	}

	if containsAny(p, "agrupaciones profesionales", "agrupacion profesional") {
		found[models.CategoryE] = true
	}

	if containsAny(p, "personal laboral", "laboral fijo", "laboral fija", "contratacion laboral", "contrato laboral") {
		found[models.CategoryLabor] = true
	}

	switch len(found) {
	case 0:
		return models.CategoryUnknown
	case 1:
		for c := range found {
			return c
		}
	}

	return models.CategoryMultiple
}

var (
	openPhrases = []string{
		"turno libre", "acceso libre", "oposicion libre", "concurso oposicion libre", "sistema general de acceso libre",
		"turno de acceso libre", "turno general",
	}

	internalPhrases = []string{"promocion interna"}

	disabilityPhrases = []string{
		"personas con discapacidad", "cupo de reserva", "turno de reserva", "discapacidad intelectual",
		"cupo de discapacidad",
	}
)

// DetectAccessMode returns how candidates access the advertised positions.
// A disability reserve alongside another turn does not change the mode; it
// is reported through the quotas instead.
func DetectAccessMode(text string) models.AccessMode {
	p := padded(text)

	open := containsAny(p, openPhrases...)
	internal := containsAny(p, internalPhrases...)
	disability := containsAny(p, disabilityPhrases...)

	switch {
	case open && internal:
		return models.AccessMixed
	case internal:
		return models.AccessInternal
	case open:
		return models.AccessOpen
	case disability:
		return models.AccessDisability
	}

	return models.AccessUnknown
}

type quotaKind int

const (
	quotaNone quotaKind = iota
	quotaOpen
	quotaInternal
	quotaDisability
)

// quotaLeads are phrases that attribute a preceding number to a turn when
// the word "plazas" does not follow it: "20 por turno libre".
var quotaLeads = []struct {
	phrase []string
	kind   quotaKind
}{
	{strings.Fields("por el sistema general de acceso libre"), quotaOpen},
	{strings.Fields("por el sistema de acceso libre"), quotaOpen},
	{strings.Fields("por el turno de acceso libre"), quotaOpen},
	{strings.Fields("por el turno libre"), quotaOpen},
	{strings.Fields("por turno libre"), quotaOpen},
	{strings.Fields("por acceso libre"), quotaOpen},
	{strings.Fields("de turno libre"), quotaOpen},
	{strings.Fields("de acceso libre"), quotaOpen},
	{strings.Fields("para acceso libre"), quotaOpen},
	{strings.Fields("en turno libre"), quotaOpen},
	{strings.Fields("turno libre"), quotaOpen},
	{strings.Fields("por el sistema de promocion interna"), quotaInternal},
	{strings.Fields("por el turno de promocion interna"), quotaInternal},
	{strings.Fields("por promocion interna"), quotaInternal},
	{strings.Fields("de promocion interna"), quotaInternal},
	{strings.Fields("para promocion interna"), quotaInternal},
	{strings.Fields("en promocion interna"), quotaInternal},
	{strings.Fields("se reservan para personas con discapacidad"), quotaDisability},
	{strings.Fields("se reserva para personas con discapacidad"), quotaDisability},
	{strings.Fields("reservadas para personas con discapacidad"), quotaDisability},
	{strings.Fields("reservada para personas con discapacidad"), quotaDisability},
	{strings.Fields("para personas con discapacidad"), quotaDisability},
	{strings.Fields("por el cupo de reserva"), quotaDisability},
	{strings.Fields("del cupo de reserva"), quotaDisability},
	{strings.Fields("por el turno de reserva"), quotaDisability},
}

const (
	quotaWindow = 12
	maxQuota    = 100000
	maxWordSpan = 4
)

var thousands = regexp.MustCompile(`(\d)\.(\d{3})\b`)

// DetectQuotas extracts position counts. A count followed by "plazas" is the
// total unless a turn is named before the next number; a count followed by
// a turn phrase belongs to that turn. The first value found for each field
// wins.
func DetectQuotas(text string) models.Quotas {
	var q models.Quotas

	tokens := strings.Fields(normalizer.NormalizeText(thousands.ReplaceAllString(text, "$1$2")))

	for i := 0; i < len(tokens); i++ {
		n, width, ok := numberAt(tokens, i)
		if !ok {
			continue
		}

		rest := tokens[i+width:]
		i += width - 1

		if len(rest) > 0 && (rest[0] == "plaza" || rest[0] == "plazas") {
			setQuota(&q, labelIn(rest[1:]), n, true)

			continue
		}

		if kind := leadKind(rest); kind != quotaNone {
			setQuota(&q, kind, n, false)
		}
	}

	return q
}

func setQuota(q *models.Quotas, kind quotaKind, n int, total bool) {
	var target **int

	switch kind {
	case quotaOpen:
		target = &q.Open
	case quotaInternal:
		target = &q.InternalPromotion
	case quotaDisability:
		target = &q.Disability
	default:
		if !total {
			return
		}

		target = &q.Total
	}

	if *target == nil {
		v := n
		*target = &v
	}
}

// labelIn looks for a turn phrase in the words after "plazas", stopping at
// the next number.
func labelIn(tokens []string) quotaKind {
	window := make([]string, 0, quotaWindow)

	for i, tok := range tokens {
		if i >= quotaWindow {
			break
		}

		if _, _, ok := numberAt(tokens, i); ok {
			break
		}

		window = append(window, tok)
	}

	p := " " + strings.Join(window, " ") + " "

	switch {
	case containsAny(p, internalPhrases...):
		return quotaInternal
	case containsAny(p, disabilityPhrases...):
		return quotaDisability
	case containsAny(p, openPhrases...):
		return quotaOpen
	}

	return quotaNone
}

func leadKind(tokens []string) quotaKind {
	for _, lead := range quotaLeads {
		if hasPrefix(tokens, lead.phrase) {
			return lead.kind
		}
	}

	return quotaNone
}

func hasPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}

	for i, w := range prefix {
		if tokens[i] != w {
			return false
		}
	}

	return true
}

// numberAt reads a count starting at tokens[i], written either in digits or
// as number words ("treinta y dos"). The longest word span wins.
func numberAt(tokens []string, i int) (int, int, bool) {
	if n, err := strconv.Atoi(tokens[i]); err == nil {
		if n < 1 || n > maxQuota {
			return 0, 0, false
		}

		return n, 1, true
	}

	if !numerals.IsNumberWord(tokens[i]) {
		return 0, 0, false
	}

	for width := min(maxWordSpan, len(tokens)-i); width >= 1; width-- {
		span := tokens[i : i+width]
		if !numerals.IsNumberWord(span[len(span)-1]) {
			continue
		}

		if n, ok := numerals.ToInt(strings.Join(span, " ")); ok {
			return n, width, true
		}
	}

	return 0, 0, false
}

var (
	municipalityPattern = regexp.MustCompile(`(?i)\bAyuntamiento\s+(?:de\s+|d'|del\s+)?([^,(;.]+?)\s*(?:\(([^)]+)\))?\s*(?:[,;.]|$|\s+(?:referente|por|relativ|sobre|de\s+\d))`)
	provincialPattern   = regexp.MustCompile(`(?i)\b(?:Diputaci[oó]n\s+Provincial|Diputaci[oó]n\s+Foral|Cabildo\s+Insular|Consell\s+Insular)\s+de\s+([^,(;.]+?)\s*(?:[,;.(]|$)`)

	localBodies = []string{
		"administracion local", "ayuntamiento", "diputacion provincial", "diputacion foral", "cabildo insular",
		"consell insular", "mancomunidad", "consorcio provincial", "comarca", "entidad local",
	}

	nationalBodies = []string{
		"ministerio", "agencia estatal", "administracion general del estado", "consejo general del poder judicial",
		"cortes generales", "tribunal constitucional", "tribunal de cuentas", "jefatura del estado",
		"presidencia del gobierno", "consejo de estado", "defensor del pueblo", "banco de espana",
	}
)

// DetectScope returns the geographic scope of an announcement issued by
// department. text is searched for the municipality and province of local
// bodies.
func DetectScope(department, text string) models.Scope {
	scope := models.Scope{Level: models.ScopeUnknown}

	dept := padded(department)
	national := containsAny(dept, nationalBodies...)

	if containsAny(dept, localBodies...) || (!national && containsAny(padded(text), localBodies[1:]...)) {
		scope.Level = models.ScopeLocal

		source := department + ". " + text
		if m := municipalityPattern.FindStringSubmatch(source); m != nil {
			scope.Municipality = nonEmpty(titleCase(m[1]))

			if p, ok := provinces[normalizer.NormalizeText(m[2])]; ok {
				scope.Province = nonEmpty(p.name)
				scope.Region = nonEmpty(p.region)
			}
		}

		if scope.Province == nil {
			if m := provincialPattern.FindStringSubmatch(source); m != nil {
				if p, ok := provinces[normalizer.NormalizeText(m[1])]; ok {
					scope.Province = nonEmpty(p.name)
					scope.Region = nonEmpty(p.region)
				}
			}
		}

		if scope.Province == nil && scope.Municipality != nil {
			// Provincial capitals share the province name.
			if p, ok := provinces[normalizer.NormalizeText(*scope.Municipality)]; ok {
				scope.Province = nonEmpty(p.name)
				scope.Region = nonEmpty(p.region)
			}
		}

		return scope
	}

	if national {
		scope.Level = models.ScopeNational

		return scope
	}

	for _, r := range regionAliases {
		if containsAny(dept, r.alias) {
			scope.Level = models.ScopeRegional
			scope.Region = nonEmpty(r.region)

			return scope
		}
	}

	return scope
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}

// titleCase capitalizes each word except short particles, for names printed
// in capitals in department headings.
func titleCase(s string) string {
	words := strings.Fields(s)

	for i, w := range words {
		lw := strings.ToLower(w)
		if i > 0 && (lw == "de" || lw == "del" || lw == "la" || lw == "las" || lw == "los" || lw == "el" || lw == "y") {
			words[i] = lw

			continue
		}

		r, size := utf8.DecodeRuneInString(lw)
		words[i] = string(unicode.ToUpper(r)) + lw[size:]
	}

	return strings.Join(words, " ")
}

// tracks is the closed catalog of exam tracks, most specific first.
var tracks = []struct {
	phrase string
	name   string
}{
	{"cuerpo superior de administradores civiles del estado", "Administradores Civiles del Estado"},
	{"cuerpo de gestion de la administracion civil del estado", "Gestión de la Administración Civil del Estado"},
	{"cuerpo general administrativo de la administracion del estado", "Administrativo del Estado"},
	{"cuerpo general auxiliar de la administracion del estado", "Auxiliar Administrativo del Estado"},
	{"cuerpo superior de inspectores de hacienda del estado", "Inspectores de Hacienda"},
	{"cuerpo tecnico de hacienda", "Técnico de Hacienda"},
	{"agentes de la hacienda publica", "Agentes de la Hacienda Pública"},
	{"letrados de la administracion de justicia", "Letrados de la Administración de Justicia"},
	{"cuerpo de gestion procesal y administrativa", "Gestión Procesal"},
	{"cuerpo de tramitacion procesal y administrativa", "Tramitación Procesal"},
	{"cuerpo de auxilio judicial", "Auxilio Judicial"},
	{"instituciones penitenciarias", "Instituciones Penitenciarias"},
	{"cuerpo nacional de policia", "Policía Nacional"},
	{"guardia civil", "Guardia Civil"},
	{"tropa y marineria", "Tropa y Marinería"},
	{"cuerpo de maestros", "Maestros"},
	{"profesores de ensenanza secundaria", "Profesores de Enseñanza Secundaria"},
	{"tecnico de administracion general", "Técnico de Administración General"},
	{"policia local", "Policía Local"},
	{"bombero", "Bomberos"},
	{"bomberos", "Bomberos"},
	{"auxiliar administrativo", "Auxiliar Administrativo"},
	{"auxiliares administrativos", "Auxiliar Administrativo"},
}

// DetectTrack returns the exam track named in text, or nil.
func DetectTrack(text string) *string {
	p := padded(text)

	for _, t := range tracks {
		if containsAny(p, t.phrase) {
			name := t.name

			return &name
		}
	}

	return nil
}

var (
	preamble = regexp.MustCompile(`(?i)^(?:resoluci[oó]n|orden|acuerdo|anuncio|decreto|real decreto|edicto)\b[^,]*,\s*`)

	connectors = []string{
		"por la que se ", "por el que se ", "por la que ", "por el que ",
		"referente a la ", "referente al ", "referente a ", "relativa a la ", "relativo a la ", "relativa a ", "relativo a ",
	}
)

// CleanTitle strips the legal preamble ("Resolución de 2 de enero de 2026,
// de la Subsecretaría, por la que se") from a gazette title.
func CleanTitle(title string) string {
	original := strings.Join(strings.Fields(title), " ")
	t := original

	if loc := preamble.FindStringIndex(t); loc != nil {
		t = t[loc[1]:]
	}

	cut, cutLen := -1, 0

	for _, c := range connectors {
		idx := strings.Index(t, c)
		if idx < 0 {
			continue
		}

		if cut < 0 || idx < cut || (idx == cut && len(c) > cutLen) {
			cut, cutLen = idx, len(c)
		}
	}

	if cut >= 0 {
		t = t[cut+cutLen:]
	}

	t = strings.TrimRight(strings.TrimSpace(t), ". ")
	if t == "" {
		return strings.TrimRight(original, ". ")
	}

	r, size := utf8.DecodeRuneInString(t)

	return string(unicode.ToUpper(r)) + t[size:]
}
