package articles

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// boilerplateSelector matches markup that is never article text: footnotes,
// back-to-top links, block markers, case-law annotations and quoted
// amendment forms.
const boilerplateSelector = "[class^='nota_pie'], .linkSubir, a[href='#top'], a[href='#inicio'], " +
	"p.bloque, [class^='juris'], .cita_con_pleca, blockquote, script, style"

var boilerplateLines = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\[?\s*bloque\s+\d+\s*:\s*#[\w-]+\s*\]?$`),
	regexp.MustCompile(`(?i)^(?:volver arriba|subir|ir arriba|inicio)$`),
}

// breakElements start and end on their own line.
var breakElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "dd": true, "dt": true,
}

// nodeText renders nodes as plain text with one line per structural element.
// Whitespace inside text nodes is collapsed the way a browser would.
func nodeText(nodes []*html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)

	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(collapseInline(n.Data))
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteByte('\n')

				return
			}

			brk := breakElements[n.Data]
			if brk {
				sb.WriteByte('\n')
			}

			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}

			if brk {
				sb.WriteByte('\n')
			}
		case html.DocumentNode:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}

	for _, n := range nodes {
		walk(n)
	}

	return sb.String()
}

// cleanLines trims every line and drops boilerplate lines. A run of blank
// lines collapses to a single newline, so paragraphs and <br> breaks are
// both separated by exactly one "\n".
func cleanLines(text string) string {
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = collapseSpaces(line)
		if line == "" || isBoilerplate(line) {
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func isBoilerplate(line string) bool {
	for _, re := range boilerplateLines {
		if re.MatchString(line) {
			return true
		}
	}

	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseInline keeps a single space where a text node had any run of
// whitespace, including at its edges.
func collapseInline(s string) string {
	if s == "" {
		return s
	}

	inner := collapseSpaces(s)
	if inner == "" {
		return " "
	}

	if isSpace(s[0]) {
		inner = " " + inner
	}

	if isSpace(s[len(s)-1]) {
		inner += " "
	}

	return inner
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}
