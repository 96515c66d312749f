package render

import (
	"strconv"
	"strings"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// NoCodeSnippets replaces the code section when a result has none.
const NoCodeSnippets = "No code snippets found in this lecture."

// Markdown serializes r in the extension's export layout.
func Markdown(r summary.Result) string {
	var b strings.Builder
	b.WriteString("# Udemy AI Smart Overview\n\n## 📝 Summary\n\n")
	b.WriteString(r.Summary)
	b.WriteString("\n\n## 💻 Code Snippets\n\n")
	if len(r.CodeBlocks) == 0 {
		b.WriteString(NoCodeSnippets)
	}
	for i, code := range r.CodeBlocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("\n### Code Snippet ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n\n```\n")
		b.WriteString(code)
		b.WriteString("\n```\n")
	}
	b.WriteString("\n\n## 🎯 Key Concepts\n\n")
	for i, c := range r.KeyConcepts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(c)
	}
	b.WriteString("\n\n---\n*Generated by Udemy AI Smart Overview Extension*\n")
	return b.String()
}
