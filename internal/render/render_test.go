package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

var sample = summary.Result{
	Summary:     "Lists and functions.",
	CodeBlocks:  []string{"print(1)", "def f():\n\treturn 2"},
	KeyConcepts: []string{"Lists are ordered", "Functions use def"},
}

func TestMarkdown_Layout(t *testing.T) {
	want := "# Udemy AI Smart Overview\n\n" +
		"## 📝 Summary\n\nLists and functions.\n\n" +
		"## 💻 Code Snippets\n\n" +
		"\n### Code Snippet 1\n\n```\nprint(1)\n```\n" +
		"\n" +
		"\n### Code Snippet 2\n\n```\ndef f():\n\treturn 2\n```\n" +
		"\n\n## 🎯 Key Concepts\n\n- Lists are ordered\n- Functions use def\n\n" +
		"---\n*Generated by Udemy AI Smart Overview Extension*\n"
	if got := Markdown(sample); got != want {
		t.Fatalf("markdown mismatch:\n--- got\n%s\n--- want\n%s", got, want)
	}
}

func TestMarkdown_NoCode(t *testing.T) {
	got := Markdown(summary.Result{Summary: "s", KeyConcepts: []string{"k"}})
	if !strings.Contains(got, "## 💻 Code Snippets\n\n"+NoCodeSnippets+"\n\n## 🎯 Key Concepts") {
		t.Fatalf("expected no-code placeholder, got:\n%s", got)
	}
	if strings.Contains(got, "### Code Snippet") {
		t.Fatalf("unexpected snippet heading")
	}
}

func TestPDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	r := sample
	r.Summary = strings.Repeat("A long summary line with unicode ✓ and “quotes”. ", 200)
	if err := PDF(r, &buf); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("missing pdf header")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Type /Page")) {
		t.Fatalf("expected at least one page object")
	}
}

func TestCP1252(t *testing.T) {
	got := cp1252("a•b✓")
	if got != "a\x95b?" {
		t.Fatalf("cp1252 = %q", got)
	}
}

func TestExportFileNameAndExport(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	if got := ExportFileName(FormatMarkdown, now); got != "udemy-summary-1700000000123.md" {
		t.Fatalf("name = %q", got)
	}
	if got := ExportFileName(FormatPDF, now); got != "udemy-summary-1700000000123.pdf" {
		t.Fatalf("name = %q", got)
	}
	dir := t.TempDir()
	path, err := Export(dir, FormatMarkdown, sample, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "udemy-summary-1700000000123.md" {
		t.Fatalf("path = %q", path)
	}
	b, _ := os.ReadFile(path)
	if string(b) != Markdown(sample) {
		t.Fatalf("exported content differs")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("markdown"); err != nil || f != FormatMarkdown {
		t.Fatalf("markdown: %v %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatal("expected error for docx")
	}
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := &Terminal{W: &buf}
	term.Loading()
	term.Render(sample, true)
	out := buf.String()
	for _, want := range []string{"Generating AI summary...", CacheIndicator, "Lists and functions.", "    print(1)", "  • Functions use def"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	buf.Reset()
	term.Render(sample, false)
	if strings.Contains(buf.String(), CacheIndicator) {
		t.Fatalf("fresh results must not show the cache indicator")
	}
	buf.Reset()
	term.Error(errors.New("backend error: 500"))
	if buf.String() != "Error: backend error: 500\n" {
		t.Fatalf("error line = %q", buf.String())
	}
}

func TestDiscard_IsRenderer(t *testing.T) {
	var r Renderer = Discard{}
	r.Loading()
	r.Render(summary.Result{Summary: "s"}, true)
	r.Error(nil)
}
