package transcript

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Length thresholds a strategy's text must exceed to count as a transcript.
const (
	minStructuredChars = 50
	minScanChars       = 100
	minScanNodeChars   = 30
)

// Strategy is one self-contained rule for locating transcript text. Find is
// pure: it only reads the document.
type Strategy struct {
	Name string
	Find func(doc *goquery.Document) (string, bool)
}

// Selector lists track the host page's markup and change with it.
var (
	toggleSelectors = []string{
		`button[data-purpose="transcript-toggle"]`,
		`button[aria-label*="Transcript"]`,
		`button[aria-label*="transcript"]`,
		`[class*="transcript-toggle"]`,
	}

	cueSelectors = []string{
		`[data-purpose="cue-text"]`,
		`[class*="transcript--cue-text"]`,
		`[class*="cue-text"]`,
		`span[class*="transcript"]`,
		`[data-purpose="transcript-cue-text"]`,
		`[class*="transcript-cue"]`,
		`.transcript p`,
		`[role="region"][aria-label*="Transcript"] p`,
		`[role="region"][aria-label*="transcript"] p`,
		`div[class*="transcript"] p`,
		`div[class*="Transcript"] p`,
	}

	containerSelectors = []string{
		`[data-purpose="transcript-container"]`,
		`[aria-label*="Transcript"]`,
		`[aria-label*="transcript"]`,
		`aside[class*="transcript"]`,
		`div[class*="transcript-panel"]`,
	}
)

// DefaultStrategies returns the ranked strategies, most specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "sidebar", Find: findSidebar},
		{Name: "cue-selectors", Find: findCues},
		{Name: "container", Find: findContainer},
		{Name: "text-scan", Find: findByTextScan},
	}
}

// findSidebar reads caption nodes inside the course sidebar, skipping the
// panel's own controls.
func findSidebar(doc *goquery.Document) (string, bool) {
	sidebar := doc.Find(`[data-purpose="sidebar"]`).First()
	if sidebar.Length() == 0 {
		return "", false
	}
	nodes := sidebar.Find(`p, span[class*="cue"], div[class*="cue"]`)
	parts := make([]string, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" || strings.Contains(t, "Autoscroll") || strings.HasPrefix(t, "Take a") {
			return
		}
		parts = append(parts, t)
	})
	text := strings.Join(parts, " ")
	return text, textLen(text) > minStructuredChars
}

func findCues(doc *goquery.Document) (string, bool) {
	for _, sel := range cueSelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		if text := joinTexts(nodes); textLen(text) > minStructuredChars {
			return text, true
		}
	}
	return "", false
}

func findContainer(doc *goquery.Document) (string, bool) {
	for _, sel := range containerSelectors {
		c := doc.Find(sel).First()
		if c.Length() == 0 {
			continue
		}
		if text := visibleText(c.Get(0)); textLen(text) > minStructuredChars {
			return text, true
		}
	}
	return "", false
}

// findByTextScan keeps sentence-like text from any p/span/div that sits
// inside something labelled as a transcript.
func findByTextScan(doc *goquery.Document) (string, bool) {
	var b strings.Builder
	doc.Find("p, span, div").Each(func(_ int, s *goquery.Selection) {
		t := s.Text()
		if textLen(t) <= minScanNodeChars || !strings.Contains(t, ".") {
			return
		}
		if strings.Contains(t, "http") || strings.Contains(t, "www") {
			return
		}
		if s.Closest(`[class*="transcript"], [class*="Transcript"]`).Length() == 0 {
			return
		}
		b.WriteString(t)
		b.WriteString(" ")
	})
	text := b.String()
	if textLen(text) <= minScanChars {
		return "", false
	}
	return strings.TrimSpace(text), true
}

func joinTexts(nodes *goquery.Selection) string {
	parts := make([]string, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
