package summarize

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

const (
	maxCodeBlocks   = 10
	maxKeyConcepts  = 5
	minConceptChars = 10
	maxConceptChars = 100
	noCodeFound     = "# No code found in transcript"
	defaultConcept  = "Main topic covered in lecture"
)

// definitionLine catches spoken or pasted declarations outside fences.
var definitionLine = regexp.MustCompile(`(?m)\b(?:def|class|import|function|const|let|var)\s+\w+.*$`)

var markdown = goldmark.New()

func parse(src []byte) ast.Node {
	return markdown.Parser().Parse(gtext.NewReader(src))
}

// FencedCode returns the bodies of fenced code blocks in s, in order.
func FencedCode(s string) []string {
	src := []byte(s)
	var out []string
	_ = ast.Walk(parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if body := strings.TrimRight(buf.String(), "\n"); strings.TrimSpace(body) != "" {
			out = append(out, body)
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

// DefinitionLines returns lines that start a declaration.
func DefinitionLines(s string) []string {
	var out []string
	for _, m := range definitionLine.FindAllString(s, -1) {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// ExtractCode collects fenced blocks then definition lines, capped at ten.
// It never returns an empty slice.
func ExtractCode(transcript string) []string {
	blocks := append(FencedCode(transcript), DefinitionLines(transcript)...)
	return capOrDefault(blocks, maxCodeBlocks, noCodeFound)
}

// KeyConcepts takes list items from the Markdown summary. Items of ten
// characters or fewer are dropped, longer ones truncated to a hundred, and
// at most five are kept.
func KeyConcepts(summaryText string) []string {
	src := []byte(summaryText)
	var out []string
	_ = ast.Walk(parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.ListItem); !ok {
			return ast.WalkContinue, nil
		}
		concept := strings.TrimSpace(itemText(n, src))
		if utf8.RuneCountInString(concept) > minConceptChars {
			out = append(out, truncateRunes(concept, maxConceptChars))
		}
		return ast.WalkContinue, nil
	})
	return capOrDefault(out, maxKeyConcepts, defaultConcept)
}

// itemText is the inline text of a list item, excluding nested lists.
func itemText(item ast.Node, src []byte) string {
	var b strings.Builder
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, nested := c.(*ast.List); nested {
			continue
		}
		_ = ast.Walk(c, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			switch t := n.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			}
			return ast.WalkContinue, nil
		})
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func capOrDefault(items []string, max int, fallback string) []string {
	if len(items) == 0 {
		return []string{fallback}
	}
	if len(items) > max {
		items = items[:max]
	}
	return items
}
