// Package numerals converts Spanish ordinal and cardinal number words into
// digits, as used in legal article headers ("Artículo vigésimo") and
// announcement bodies ("cinco plazas").
package numerals

import (
	"strconv"
	"strings"
)

// MaxValue is the largest number the vocabulary can express.
const MaxValue = 399

// Tables are keyed by the accent-folded, lowercased spelling. They are never
// written after package initialization.
var (
	units = map[string]int{
		"uno": 1, "una": 1, "un": 1, "primero": 1, "primera": 1, "primer": 1, "primo": 1,
		"dos": 2, "segundo": 2, "segunda": 2,
		"tres": 3, "tercero": 3, "tercera": 3, "tercer": 3,
		"cuatro": 4, "cuarto": 4, "cuarta": 4,
		"cinco": 5, "quinto": 5, "quinta": 5,
		"seis": 6, "sexto": 6, "sexta": 6,
		"siete": 7, "septimo": 7, "septima": 7, "setimo": 7, "setima": 7,
		"ocho": 8, "octavo": 8, "octava": 8,
		"nueve": 9, "noveno": 9, "novena": 9, "nono": 9, "nona": 9,
	}

	direct = map[string]int{
		"veinte": 20, "vigesimo": 20, "vigesima": 20,
	}

	teens = map[string]int{
		"diez": 10, "decimo": 10, "decima": 10,
		"once": 11, "undecimo": 11, "undecima": 11, "decimoprimero": 11, "decimoprimera": 11,
		"doce": 12, "duodecimo": 12, "duodecima": 12, "decimosegundo": 12, "decimosegunda": 12,
		"trece": 13, "decimotercero": 13, "decimotercera": 13, "decimotercer": 13,
		"catorce": 14, "decimocuarto": 14, "decimocuarta": 14,
		"quince": 15, "decimoquinto": 15, "decimoquinta": 15,
		"dieciseis": 16, "decimosexto": 16, "decimosexta": 16,
		"diecisiete": 17, "decimoseptimo": 17, "decimoseptima": 17,
		"dieciocho": 18, "decimoctavo": 18, "decimoctava": 18, "decimooctavo": 18, "decimooctava": 18,
		"diecinueve": 19, "decimonoveno": 19, "decimonovena": 19, "decimonono": 19, "decimonona": 19,
	}

	twenties = map[string]int{
		"veintiuno": 21, "veintiuna": 21, "veintiun": 21,
		"veintidos": 22,
		"veintitres": 23,
		"veinticuatro": 24,
		"veinticinco": 25,
		"veintiseis": 26,
		"veintisiete": 27,
		"veintiocho": 28,
		"veintinueve": 29,
	}

	// tens may be followed by a units word, joined by "y" for cardinals and
	// directly for ordinals ("trigésimo segundo").
	tens = map[string]int{
		"decimo": 10, "decima": 10,
		"veinte": 20, "vigesimo": 20, "vigesima": 20,
		"treinta": 30, "trigesimo": 30, "trigesima": 30,
		"cuarenta": 40, "cuadragesimo": 40, "cuadragesima": 40,
		"cincuenta": 50, "quincuagesimo": 50, "quincuagesima": 50,
		"sesenta": 60, "sexagesimo": 60, "sexagesima": 60,
		"setenta": 70, "septuagesimo": 70, "septuagesima": 70,
		"ochenta": 80, "octogesimo": 80, "octogesima": 80,
		"noventa": 90, "nonagesimo": 90, "nonagesima": 90,
	}

	hundreds = map[string]int{
		"ciento": 100, "centesimo": 100, "centesima": 100,
		"doscientos": 200, "doscientas": 200, "ducentesimo": 200, "ducentesima": 200,
		"trescientos": 300, "trescientas": 300, "tricentesimo": 300, "tricentesima": 300,
	}

	suffixes = map[string]string{
		"bis": "bis", "ter": "ter", "quater": "quater", "quinquies": "quinquies",
		"sexies": "sexies", "septies": "septies", "octies": "octies",
		"nonies": "nonies", "decies": "decies",
	}
)

var (
	accentFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u")
	punctuation  = strings.NewReplacer(
		".", " ", ",", " ", ";", " ", ":", " ", "(", " ", ")", " ", "-", " ",
		"–", " ", "—", " ", "\"", " ", "'", " ", "«", " ", "»", " ", "º", " ", "ª", " ",
	)
)

// ToNumber converts a Spanish number expression, optionally followed by a
// Latin suffix, to its digit form: "vigésimo" is "20", "tercero bis" is
// "3 bis". It reports false for anything outside the vocabulary, including
// values above MaxValue.
func ToNumber(text string) (string, bool) {
	value, suffix, ok := parse(text)
	if !ok {
		return "", false
	}

	out := strconv.Itoa(value)
	if suffix != "" {
		out += " " + suffix
	}

	return out, true
}

// ToInt converts a number expression to an int, ignoring any suffix.
func ToInt(text string) (int, bool) {
	value, _, ok := parse(text)

	return value, ok
}

// IsNumberWord reports whether word alone is part of the vocabulary.
func IsNumberWord(word string) bool {
	w := fold(word)

	return inAny(w, units, direct, teens, twenties, tens, hundreds) || w == "cien"
}

func parse(text string) (int, string, bool) {
	tokens := strings.Fields(punctuation.Replace(fold(text)))
	if len(tokens) == 0 {
		return 0, "", false
	}

	suffix := ""
	if s, ok := suffixes[tokens[len(tokens)-1]]; ok {
		suffix = s
		tokens = tokens[:len(tokens)-1]
	}

	value, ok := lookup(tokens)
	if !ok || value < 1 || value > MaxValue {
		return 0, "", false
	}

	return value, suffix, true
}

func lookup(tokens []string) (int, bool) {
	if len(tokens) == 0 {
		return 0, false
	}

	if len(tokens) == 1 {
		w := tokens[0]
		for _, table := range []map[string]int{units, direct, teens, twenties, tens} {
			if v, ok := table[w]; ok {
				return v, true
			}
		}

		if w == "cien" {
			return 100, true
		}

		if v, ok := hundreds[w]; ok && w != "ciento" {
			return v, true
		}

		return 0, false
	}

	if v, ok := hundreds[tokens[0]]; ok {
		rest, ok := lookup(tokens[1:])
		if !ok || rest >= 100 {
			return 0, false
		}

		return v + rest, true
	}

	if v, ok := compoundTens(tokens); ok {
		return v, true
	}

	return 0, false
}

// compoundTens handles "treinta y dos", "trigésimo segundo" and
// "décimo tercero".
func compoundTens(tokens []string) (int, bool) {
	t, ok := tens[tokens[0]]
	if !ok {
		return 0, false
	}

	rest := tokens[1:]
	if len(rest) == 2 && rest[0] == "y" {
		rest = rest[1:]
	}

	if len(rest) != 1 {
		return 0, false
	}

	u, ok := units[rest[0]]
	if !ok {
		return 0, false
	}

	return t + u, true
}

func fold(s string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func inAny(w string, tables ...map[string]int) bool {
	for _, t := range tables {
		if _, ok := t[w]; ok {
			return true
		}
	}

	return false
}
