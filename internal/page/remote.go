package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Remote is a page fetched over HTTP. A click cannot run the host page's
// scripts, so it invalidates the snapshot and the next Document call
// re-fetches, picking up a panel the server renders once requested.
type Remote struct {
	url    string
	getter Getter

	mu    sync.Mutex
	doc   *goquery.Document
	title string
	stale bool
}

// NewRemote fetches rawURL once and keeps the parsed snapshot.
func NewRemote(ctx context.Context, rawURL string, getter Getter) (*Remote, error) {
	p := &Remote{url: rawURL, getter: getter, stale: true}
	if _, err := p.Document(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Remote) URL() string { return p.url }

func (p *Remote) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *Remote) Document(ctx context.Context) (*goquery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stale && p.doc != nil {
		return p.doc, nil
	}
	body, _, err := p.getter.Get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	doc, err := Parse(body)
	if err != nil {
		return nil, err
	}
	p.doc = doc
	p.title = TitleOf(doc)
	p.stale = false
	return doc, nil
}

func (p *Remote) Click(_ context.Context, sel *goquery.Selection) error {
	if sel == nil || sel.Length() == 0 {
		return ErrNoElement
	}
	log.Debug().Str("url", p.url).Msg("toggle activated; page will be re-read")
	p.mu.Lock()
	p.stale = true
	p.mu.Unlock()
	return nil
}

// Refresh forces the next Document call to re-fetch.
func (p *Remote) Refresh() {
	p.mu.Lock()
	p.stale = true
	p.mu.Unlock()
}
