// Package page models the host course page the pipeline reads from: a parsed
// DOM snapshot plus the single interaction the extractor needs (activating a
// control such as the transcript toggle).
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a lecture page as seen by the pipeline.
type Page interface {
	// URL is the page address used as cache identity.
	URL() string
	// Title is the document title, sent to the backend as the lecture title.
	Title() string
	// Document returns the current DOM. It may change after Click.
	Document(ctx context.Context) (*goquery.Document, error)
	// Click activates the first element of sel.
	Click(ctx context.Context, sel *goquery.Selection) error
}

// Getter fetches a page body. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// ErrNoElement is returned by Click when the selection is empty.
var ErrNoElement = errors.New("page: no element to click")

// Parse turns HTML bytes into a goquery document.
func Parse(body []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// TitleOf returns the trimmed <title> text.
func TitleOf(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// CanonicalURL returns the page address a saved snapshot declares about
// itself, preferring <link rel="canonical"> over og:url.
func CanonicalURL(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	if v, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IsRemote reports whether ref names an http(s) page rather than a file.
func IsRemote(ref string) bool {
	l := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Load opens ref as a page. URLs are fetched through getter; anything else is
// read as a saved HTML snapshot. urlOverride, when set, replaces the page URL.
func Load(ctx context.Context, ref string, urlOverride string, getter Getter) (Page, error) {
	if IsRemote(ref) {
		if getter == nil {
			return nil, errors.New("page: no fetcher configured for remote page")
		}
		p, err := NewRemote(ctx, ref, getter)
		if err != nil {
			return nil, err
		}
		if urlOverride != "" {
			p.url = urlOverride
		}
		return p, nil
	}
	body, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	p, err := NewStatic(urlOverride, body)
	if err != nil {
		return nil, err
	}
	if p.URL() == "" {
		return nil, fmt.Errorf("page: snapshot %s declares no URL; pass one explicitly", ref)
	}
	return p, nil
}
