package articles

import (
	"fmt"
	"regexp"
	"strings"

	"gazette/internal/models"
	"gazette/internal/normalizer"
	"gazette/internal/numerals"
)

const (
	keyword   = `(?:art[íi]culo|art\.|article)`
	suffixAlt = `bis|ter|qu[aá]ter|quinquies|sexies|septies|octies|nonies|decies`

	// digits, an optional ordinal indicator, an optional suffix and an
	// optional sub-number: "3", "1.º", "3 bis", "10.2", "10 ter 2."
	numberPart = `(\d+)(?:\.?[ºª°])?(?:\s*[-.]?\s*(` + suffixAlt + `)\b)?(?:(?:[.\-]|\s+)(\d+)(?:\s*\.|\s*$))?`

	separator = `[.:\-–—)]`
)

// maxNumeralWords bounds the longest spelled-out number tried as a prefix.
const maxNumeralWords = 6

type header struct {
	number models.ArticleNumber
	text   string
	title  string
}

// headerRule pairs a header pattern with the handler that turns its
// submatches into a header. A handler error means the pattern matched but
// the header could not be used.
type headerRule struct {
	name    string
	pattern *regexp.Regexp
	handle  func(m []string) (header, error)
}

// defaultRules are tried in order; the first handler that succeeds wins.
func defaultRules() []headerRule {
	return []headerRule{
		{
			name:    "keyword-digits",
			pattern: regexp.MustCompile(`(?is)^` + keyword + `\s*` + numberPart + `\s*` + separator + `?\s*(.*)$`),
			handle:  digitsHandler,
		},
		{
			name:    "bare-digits",
			pattern: regexp.MustCompile(`(?is)^` + numberPart + `(?:\s*` + separator + `\s*(.*))?\s*$`),
			handle:  digitsHandler,
		},
		{
			name:    "keyword-ordinal",
			pattern: regexp.MustCompile(`(?is)^` + keyword + `\s+([\p{L}\s]+?)\s*(?:` + separator + `\s*(.*))?$`),
			handle:  ordinalHandler(false),
		},
		{
			name:    "bare-ordinal",
			pattern: regexp.MustCompile(`(?is)^([\p{L}\s]+?)\s*(?:` + separator + `\s*(.*))?$`),
			handle:  ordinalHandler(true),
		},
	}
}

// m: [full, digits, suffix, sub, title]
func digitsHandler(m []string) (header, error) {
	raw := normalizer.NormalizeArticleNumber(strings.Join([]string{m[1], m[2], m[3]}, " "))

	number, err := models.ParseArticleNumber(raw)
	if err != nil {
		return header{}, fmt.Errorf("%w: %v", ErrUnrecognizedHeader, err)
	}

	return header{number: number, text: raw, title: m[4]}, nil
}

// m: [full, words, title]. The longest prefix of words that converts is the
// number; any remaining words lead the title.
func ordinalHandler(requireNumberWord bool) func(m []string) (header, error) {
	return func(m []string) (header, error) {
		words := strings.Fields(m[1])
		if len(words) == 0 {
			return header{}, ErrUnrecognizedHeader
		}

		if requireNumberWord && !numerals.IsNumberWord(words[0]) {
			return header{}, ErrUnrecognizedHeader
		}

		for k := min(len(words), maxNumeralWords); k > 0; k-- {
			phrase := strings.Join(words[:k], " ")

			digits, ok := numerals.ToNumber(phrase)
			if !ok {
				continue
			}

			number, err := models.ParseArticleNumber(digits)
			if err != nil {
				return header{}, fmt.Errorf("%w: %q", ErrUnsupportedOrdinal, phrase)
			}

			title := strings.Join(words[k:], " ")

			switch {
			case title == "":
				title = m[2]
			case m[2] != "":
				title += ". " + m[2]
			}

			return header{number: number, text: phrase, title: title}, nil
		}

		return header{}, fmt.Errorf("%w: %q", ErrUnsupportedOrdinal, m[1])
	}
}

// matchHeader runs the rule chain over a header line.
func matchHeader(rules []headerRule, line string) (header, error) {
	line = strings.Join(strings.Fields(line), " ")
	if line == "" {
		return header{}, ErrUnrecognizedHeader
	}

	var firstErr error

	for _, rule := range rules {
		m := rule.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		h, err := rule.handle(m)
		if err == nil {
			h.title = cleanTitle(h.title)

			return h, nil
		}

		if firstErr == nil || (!isUnsupported(firstErr) && isUnsupported(err)) {
			firstErr = err
		}
	}

	if firstErr != nil {
		return header{}, firstErr
	}

	return header{}, fmt.Errorf("%w: %q", ErrUnrecognizedHeader, line)
}

func cleanTitle(t string) string {
	t = strings.TrimSpace(t)
	for strings.HasSuffix(t, ".") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "."))
	}

	return t
}
