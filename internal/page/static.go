package page

import (
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Static is an in-memory DOM snapshot. Clicking a collapsed toggle marks it
// expanded so later reads observe the opened state.
type Static struct {
	url   string
	title string

	mu     sync.Mutex
	doc    *goquery.Document
	clicks int
}

// NewStatic parses body. An empty pageURL falls back to the canonical URL
// declared by the document.
func NewStatic(pageURL string, body []byte) (*Static, error) {
	doc, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if pageURL == "" {
		pageURL = CanonicalURL(doc)
	}
	return &Static{url: pageURL, title: TitleOf(doc), doc: doc}, nil
}

func (p *Static) URL() string   { return p.url }
func (p *Static) Title() string { return p.title }

func (p *Static) Document(_ context.Context) (*goquery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc, nil
}

func (p *Static) Click(_ context.Context, sel *goquery.Selection) error {
	if sel == nil || sel.Length() == 0 {
		return ErrNoElement
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks++
	el := sel.First()
	if v, ok := el.Attr("aria-expanded"); ok && v == "false" {
		el.SetAttr("aria-expanded", "true")
	}
	return nil
}

// Clicks returns how many times Click succeeded.
func (p *Static) Clicks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks
}
