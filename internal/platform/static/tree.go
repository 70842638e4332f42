package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mj1618/websteps/internal/platform"
	"golang.org/x/net/html"
)

// Elements that are never rendered, along with everything inside them.
var nonRendered = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

func (d *Document) FindAll(ctx context.Context, q platform.Query) ([]platform.ElementRef, error) {
	if err := d.begin(ctx); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	var candidates *goquery.Selection
	switch {
	case q.Within == nil:
		candidates = d.doc.Find("*")
	case q.ChildrenOnly:
		scope, err := d.live(q.Within)
		if err != nil {
			return nil, err
		}
		candidates = scope.Children()
	default:
		scope, err := d.live(q.Within)
		if err != nil {
			return nil, err
		}
		candidates = scope.Find("*")
	}

	var refs []platform.ElementRef
	candidates.Each(func(_ int, s *goquery.Selection) {
		if n := s.Get(0); matches(n, q) {
			refs = append(refs, n)
		}
	})
	return refs, nil
}

func matches(n *html.Node, q platform.Query) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if q.Tag != "" && n.Data != q.Tag {
		return false
	}
	for _, a := range q.Attrs {
		v, ok := attr(n, a.Name)
		if !ok {
			if a.OrAbsent {
				continue
			}
			return false
		}
		if v != a.Value {
			return false
		}
	}
	if q.Text == "" && q.Contains == "" {
		return true
	}
	text := platform.NormalizeSpace(renderedText(n))
	if q.Text != "" && text != q.Text {
		return false
	}
	if q.Contains != "" && !strings.Contains(text, q.Contains) {
		return false
	}
	return true
}

func (d *Document) Attribute(ctx context.Context, ref platform.ElementRef, name string) (string, bool, error) {
	if err := d.begin(ctx); err != nil {
		return "", false, err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return "", false, err
	}
	n := sel.Get(0)
	if name == "value" {
		switch n.Data {
		case "textarea":
			return sel.Text(), true, nil
		case "select":
			opts := selectedOptions(sel)
			if opts.Length() == 0 {
				return "", true, nil
			}
			return optionValue(opts.First()), true, nil
		}
	}
	v, ok := sel.Attr(name)
	return v, ok, nil
}

func (d *Document) Text(ctx context.Context, ref platform.ElementRef) (string, error) {
	if err := d.begin(ctx); err != nil {
		return "", err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return "", err
	}
	return platform.NormalizeSpace(renderedText(sel.Get(0))), nil
}

func (d *Document) IsVisible(ctx context.Context, ref platform.ElementRef) (bool, error) {
	if err := d.begin(ctx); err != nil {
		return false, err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return false, err
	}
	for n := sel.Get(0); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hidden(n) {
			return false, nil
		}
	}
	return true, nil
}

func hidden(n *html.Node) bool {
	if nonRendered[n.Data] {
		return true
	}
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if n.Data == "input" {
		if t, _ := attr(n, "type"); strings.EqualFold(t, "hidden") {
			return true
		}
	}
	style, _ := attr(n, "style")
	style = strings.ToLower(strings.Join(strings.Fields(style), ""))
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func (d *Document) IsSelected(ctx context.Context, ref platform.ElementRef) (bool, error) {
	if err := d.begin(ctx); err != nil {
		return false, err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return false, err
	}
	switch sel.Get(0).Data {
	case "input":
		_, checked := sel.Attr("checked")
		return checked, nil
	case "option":
		sel = selectedOptions(sel.Closest("select")).FilterNodes(sel.Get(0))
		return sel.Length() > 0, nil
	}
	return false, nil
}

func (d *Document) Type(ctx context.Context, ref platform.ElementRef, text string) error {
	if err := d.begin(ctx); err != nil {
		return err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return err
	}
	switch sel.Get(0).Data {
	case "input":
		cur, _ := sel.Attr("value")
		sel.SetAttr("value", cur+text)
	case "textarea":
		sel.SetText(sel.Text() + text)
	default:
		return fmt.Errorf("static: cannot type into <%s>", sel.Get(0).Data)
	}
	return nil
}

func (d *Document) Clear(ctx context.Context, ref platform.ElementRef) error {
	if err := d.begin(ctx); err != nil {
		return err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return err
	}
	switch sel.Get(0).Data {
	case "input":
		sel.SetAttr("value", "")
	case "textarea":
		sel.Empty()
	default:
		return fmt.Errorf("static: cannot clear <%s>", sel.Get(0).Data)
	}
	return nil
}

// selectedOptions returns the options of a select that count as selected. A
// single select with nothing marked selects its first option.
func selectedOptions(sel *goquery.Selection) *goquery.Selection {
	options := sel.Find("option")
	marked := options.Filter("[selected]")
	if marked.Length() > 0 {
		return marked
	}
	if _, multiple := sel.Attr("multiple"); multiple {
		return marked
	}
	return options.First()
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return platform.NormalizeSpace(opt.Text())
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// renderedText concatenates the text under n, skipping elements that are
// never rendered.
func renderedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data != "title" && nonRendered[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
