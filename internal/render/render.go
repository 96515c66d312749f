// Package render turns a summary.Result into user-facing output: terminal
// text during a generation cycle and Markdown or PDF exports afterwards.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// Renderer receives the display transitions of one generation cycle.
type Renderer interface {
	Loading()
	Render(r summary.Result, fromCache bool)
	Error(err error)
}

// CacheIndicator is printed above results served from the cache.
const CacheIndicator = "⚡ Loaded from cache (instant!)"

// Terminal writes plain text to W. It is safe for concurrent cycles; the
// last one to write wins, as on a page.
type Terminal struct {
	W io.Writer
	// Quiet suppresses the loading line.
	Quiet bool

	mu sync.Mutex
}

func (t *Terminal) Loading() {
	if t.Quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.W, "Generating AI summary...")
}

func (t *Terminal) Render(r summary.Result, fromCache bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fromCache {
		fmt.Fprintln(t.W, CacheIndicator)
		fmt.Fprintln(t.W)
	}
	io.WriteString(t.W, Text(r))
}

func (t *Terminal) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.W, "Error: %v\n", err)
}

// Text is the terminal layout of r.
func Text(r summary.Result) string {
	var b strings.Builder
	b.WriteString("📝 Summary\n\n")
	b.WriteString(strings.TrimRight(r.Summary, "\n"))
	b.WriteString("\n\n💻 Code Snippets\n\n")
	if len(r.CodeBlocks) == 0 {
		b.WriteString(NoCodeSnippets + "\n")
	}
	for _, code := range r.CodeBlocks {
		for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n🎯 Key Concepts\n\n")
	for _, c := range r.KeyConcepts {
		b.WriteString("  • ")
		b.WriteString(c)
		b.WriteByte('\n')
	}
	return b.String()
}

// Discard ignores every transition.
type Discard struct{}

func (Discard) Loading()                    {}
func (Discard) Render(summary.Result, bool) {}
func (Discard) Error(error)                 {}
