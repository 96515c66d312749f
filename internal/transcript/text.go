package transcript

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// visibleText approximates a browser's innerText for n: script and style
// content is dropped, block elements start new lines, and whitespace is
// collapsed within lines.
func visibleText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, n, false)
	return strings.TrimSpace(normalizeWhitespace(b.String()))
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "svg":
			return
		case "pre":
			inPre = true
			b.WriteString("\n")
		case "br":
			b.WriteString("\n")
		case "p", "div", "li", "section", "article", "aside", "ul", "ol",
			"h1", "h2", "h3", "h4", "h5", "h6", "button", "label", "tr":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(data)
		}
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "div", "li", "pre", "section", "article", "aside",
			"h1", "h2", "h3", "h4", "h5", "h6", "tr":
			b.WriteString("\n")
		}
	}
}

// normalizeWhitespace trims every line, collapses space runs, and drops
// blank lines.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := strings.Join(strings.Fields(line), " "); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// textLen counts runes for the length thresholds. JS .length would count
// UTF-16 units, so astral characters count once here, not twice.
func textLen(s string) int {
	return utf8.RuneCountInString(s)
}
