// Package static implements the platform Tree over an in-memory HTML
// document. Pages are parsed with goquery; links and form submissions are
// followed through a Fetcher. There is no script engine, so the driver suits
// server-rendered sites and tests that mutate the page directly.
package static

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/mj1618/websteps/internal/platform"
	"golang.org/x/net/html"
)

// Submission records a form submitted by a click.
type Submission struct {
	Method string
	URL    string
	Values url.Values
}

// Document is a mutable HTML page. It is safe for concurrent use, so tests can
// change the page from another goroutine while a step polls it.
type Document struct {
	mu          sync.Mutex
	doc         *goquery.Document
	url         string
	fetcher     Fetcher
	submissions []Submission
	closed      bool
}

var _ platform.Tree = (*Document)(nil)

// New returns an empty document that loads pages through f. f may be nil, in
// which case Navigate fails and form submissions are only recorded.
func New(f Fetcher) *Document {
	d := &Document{fetcher: f}
	d.doc = mustParse("")
	return d
}

// FromHTML returns a document holding the given markup at pageURL.
func FromHTML(pageURL, markup string) (*Document, error) {
	d := &Document{url: pageURL}
	if err := d.SetHTML(markup); err != nil {
		return nil, err
	}
	return d, nil
}

// SetFetcher replaces the fetcher used for navigation and submissions.
func (d *Document) SetFetcher(f Fetcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetcher = f
}

// SetHTML replaces the whole page. References into the old page become stale.
func (d *Document) SetHTML(markup string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
	return nil
}

// Mutate runs fn against the live page under the document lock.
func (d *Document) Mutate(fn func(doc *goquery.Selection)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc.Selection)
}

// Submissions returns the forms submitted so far, oldest first.
func (d *Document) Submissions() []Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Submission, len(d.submissions))
	copy(out, d.submissions)
	return out
}

// Close marks the session gone. Later calls return platform.ErrSessionGone.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Document) CurrentURL(ctx context.Context) (string, error) {
	if err := d.begin(ctx); err != nil {
		return "", err
	}
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Document) Navigate(ctx context.Context, rawURL string) error {
	if err := d.begin(ctx); err != nil {
		return err
	}
	defer d.mu.Unlock()
	target, err := d.resolve(rawURL)
	if err != nil {
		return err
	}
	return d.load(ctx, "GET", target, nil)
}

// begin checks the context and session and takes the lock. Callers must
// unlock when it returns nil.
func (d *Document) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return platform.ErrSessionGone
	}
	return nil
}

// live returns a selection for ref if it is still attached to the page.
func (d *Document) live(ref platform.ElementRef) (*goquery.Selection, error) {
	n, ok := ref.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("static: foreign element reference %T: %w", ref, platform.ErrNoSuchElement)
	}
	sel := d.doc.FindNodes(n)
	if sel.Length() == 0 {
		return nil, platform.ErrStale
	}
	return sel, nil
}

func (d *Document) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if d.url == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(d.url)
	if err != nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

// load fetches target and replaces the page. Called with the lock held.
func (d *Document) load(ctx context.Context, method, target string, form url.Values) error {
	if d.fetcher == nil {
		return fmt.Errorf("static: cannot load %s: no fetcher configured", target)
	}
	body, err := d.fetcher.Fetch(ctx, method, target, form)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", target, err)
	}
	d.doc = doc
	d.url = target
	return nil
}

func mustParse(markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		panic(err)
	}
	return doc
}
