package bulletin

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var lineBreakTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "ul": true, "ol": true, "dd": true, "dt": true,
}

// PlainText strips markup from a document body, keeping paragraph and line
// breaks as newlines. Entities are unescaped.
func PlainText(markup string) string {
	var sb strings.Builder

	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer error; either way the text so far is kept.
			break
		}

		switch tt {
		case html.TextToken:
			sb.WriteString(squeeze(string(z.Text())))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if lineBreakTags[string(name)] {
				sb.WriteByte('\n')
			}
		}
	}

	var lines []string

	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// squeeze collapses whitespace runs to one space, keeping a space at either
// edge if the text had one there.
func squeeze(s string) string {
	var sb strings.Builder

	space := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true

			continue
		}

		if space {
			sb.WriteByte(' ')
			space = false
		}

		sb.WriteRune(r)
	}

	if space {
		sb.WriteByte(' ')
	}

	return sb.String()
}
