// Package transcript recovers lecture transcript text from a course page
// using a ranked list of DOM strategies.
package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/page"
)

// DefaultOpenDelay is how long the extractor waits for a freshly opened
// transcript panel to render.
const DefaultOpenDelay = time.Second

// Source is anything that can produce a transcript outcome for a page.
type Source interface {
	Extract(ctx context.Context, p page.Page) Outcome
}

// Extractor runs the strategies in order and returns the first success.
type Extractor struct {
	Strategies []Strategy
	OpenDelay  time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Extractor with the default strategies and delay.
func New() *Extractor {
	return &Extractor{Strategies: DefaultStrategies(), OpenDelay: DefaultOpenDelay}
}

// Extract never fails: every problem degrades to NotFound.
func (e *Extractor) Extract(ctx context.Context, p page.Page) Outcome {
	if p == nil {
		return NotFound()
	}
	doc, err := p.Document(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", p.URL()).Msg("could not read page for transcript")
		return NotFound()
	}
	if e.ensurePanelOpen(ctx, p, doc) {
		if doc, err = p.Document(ctx); err != nil {
			log.Warn().Err(err).Str("url", p.URL()).Msg("could not re-read page after opening transcript")
			return NotFound()
		}
	}

	for _, s := range e.strategies() {
		if text, ok := s.Find(doc); ok {
			log.Info().Str("strategy", s.Name).Int("chars", textLen(text)).Msg("transcript extracted")
			return Outcome{Text: text, Real: true, Strategy: s.Name}
		}
		log.Debug().Str("strategy", s.Name).Msg("strategy found nothing")
	}

	n := Diagnose(doc)
	log.Warn().Int("candidates", n).Str("url", p.URL()).Msg("could not extract transcript")
	return NotFound()
}

func (e *Extractor) strategies() []Strategy {
	if e.Strategies == nil {
		return DefaultStrategies()
	}
	return e.Strategies
}

// Ready reports whether doc already shows transcript text or a control that
// opens it. It never clicks.
func (e *Extractor) Ready(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	for _, sel := range toggleSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	for _, s := range e.strategies() {
		if _, ok := s.Find(doc); ok {
			return true
		}
	}
	return false
}

// ensurePanelOpen clicks the first collapsed transcript toggle, at most once,
// and waits for the panel to render. It reports whether it clicked.
func (e *Extractor) ensurePanelOpen(ctx context.Context, p page.Page, doc *goquery.Document) bool {
	for _, sel := range toggleSelectors {
		btn := doc.Find(sel).First()
		if btn.Length() == 0 {
			continue
		}
		if v, _ := btn.Attr("aria-expanded"); v != "false" {
			continue
		}
		if err := p.Click(ctx, btn); err != nil {
			log.Debug().Err(err).Str("selector", sel).Msg("transcript toggle click failed")
			return false
		}
		log.Debug().Str("selector", sel).Msg("opened transcript panel")
		if err := e.sleep(ctx, e.OpenDelay); err != nil {
			log.Debug().Err(err).Msg("wait for transcript panel interrupted")
		}
		return true
	}
	return false
}

func (e *Extractor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Diagnose logs every node whose class, aria-label, or data-purpose mentions
// a transcript, to help track markup changes on the host page. It returns
// the number of such nodes.
func Diagnose(doc *goquery.Document) int {
	if doc == nil {
		return 0
	}
	found := 0
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		aria, _ := s.Attr("aria-label")
		purpose, _ := s.Attr("data-purpose")
		if !mentionsTranscript(class) && !mentionsTranscript(aria) && !mentionsTranscript(purpose) {
			return
		}
		found++
		log.Debug().
			Str("tag", goquery.NodeName(s)).
			Str("class", class).
			Str("aria-label", aria).
			Str("data-purpose", purpose).
			Int("textLength", textLen(s.Text())).
			Msg("transcript-related element")
	})
	return found
}

func mentionsTranscript(s string) bool {
	return strings.Contains(strings.ToLower(s), "transcript")
}
