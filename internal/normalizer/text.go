// Package normalizer provides accent-insensitive text normalization and the
// content differ used to detect drift in stored article bodies.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuation = strings.NewReplacer(
		".", " ", ",", " ", ";", " ", ":", " ", "¿", " ", "?", " ", "¡", " ", "!", " ",
		"\"", " ", "'", " ", "«", " ", "»", " ", "“", " ", "”", " ", "‘", " ", "’", " ",
		"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
		"-", " ", "–", " ", "—", " ", "/", " ", "\\", " ", "*", " ", "…", " ", "·", " ",
		"º", " ", "ª", " ",
	)

	digitLetter = regexp.MustCompile(`(\d)([a-z])`)
	letterDigit = regexp.MustCompile(`([a-z])(\d)`)
)

// NormalizeText lowercases s, strips diacritics, replaces punctuation with
// spaces and collapses whitespace. It is idempotent.
func NormalizeText(s string) string {
	s = stripMarks(strings.ToLower(s))
	s = punctuation.Replace(s)

	return strings.Join(strings.Fields(s), " ")
}

// NormalizeArticleNumber canonicalizes an article number: "3BIS" and
// "3  bis" both become "3 bis", "quáter" becomes "quater".
func NormalizeArticleNumber(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "quáter", "quater")
	s = strings.NewReplacer("-", " ", ".", " ", "_", " ").Replace(s)
	s = digitLetter.ReplaceAllString(s, "$1 $2")
	s = letterDigit.ReplaceAllString(s, "$1 $2")

	return strings.Join(strings.Fields(s), " ")
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
