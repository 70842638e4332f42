package static

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mj1618/websteps/internal/platform"
)

func (d *Document) Click(ctx context.Context, ref platform.ElementRef) error {
	if err := d.begin(ctx); err != nil {
		return err
	}
	defer d.mu.Unlock()

	sel, err := d.live(ref)
	if err != nil {
		return err
	}
	return d.click(ctx, sel)
}

// click applies the default action of the element. Called with the lock held.
func (d *Document) click(ctx context.Context, sel *goquery.Selection) error {
	if _, disabled := sel.Attr("disabled"); disabled {
		return nil
	}
	switch sel.Get(0).Data {
	case "input":
		switch inputType(sel) {
		case "checkbox":
			toggleAttr(sel, "checked")
		case "radio":
			d.chooseRadio(sel)
		case "submit", "image":
			return d.submit(ctx, sel.Closest("form"), sel)
		}
	case "button":
		if t, _ := sel.Attr("type"); t == "" || strings.EqualFold(t, "submit") {
			return d.submit(ctx, sel.Closest("form"), sel)
		}
	case "option":
		selectOption(sel)
	case "label":
		if control := d.labelControl(sel); control != nil {
			return d.click(ctx, control)
		}
	case "a":
		if href, ok := sel.Attr("href"); ok && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
			target, err := d.resolve(href)
			if err != nil {
				return err
			}
			if d.fetcher == nil {
				d.url = target
				return nil
			}
			return d.load(ctx, "GET", target, nil)
		}
	}
	return nil
}

func inputType(sel *goquery.Selection) string {
	t, _ := sel.Attr("type")
	if t == "" {
		return "text"
	}
	return strings.ToLower(t)
}

func toggleAttr(sel *goquery.Selection, name string) {
	if _, ok := sel.Attr(name); ok {
		sel.RemoveAttr(name)
		return
	}
	sel.SetAttr(name, name)
}

// chooseRadio checks sel and unchecks the other radios of its group.
func (d *Document) chooseRadio(sel *goquery.Selection) {
	name, _ := sel.Attr("name")
	if name != "" {
		scope := sel.Closest("form")
		if scope.Length() == 0 {
			scope = d.doc.Selection
		}
		scope.Find(`input`).FilterFunction(func(_ int, s *goquery.Selection) bool {
			n, _ := s.Attr("name")
			return n == name && inputType(s) == "radio"
		}).RemoveAttr("checked")
	}
	sel.SetAttr("checked", "checked")
}

// selectOption selects an option. In a multiple select the option toggles;
// otherwise it replaces the current selection.
func selectOption(opt *goquery.Selection) {
	parent := opt.Closest("select")
	if _, multiple := parent.Attr("multiple"); multiple {
		toggleAttr(opt, "selected")
		return
	}
	parent.Find("option").RemoveAttr("selected")
	opt.SetAttr("selected", "selected")
}

// labelControl returns the control a label is for, or nil.
func (d *Document) labelControl(label *goquery.Selection) *goquery.Selection {
	if id, ok := label.Attr("for"); ok {
		control := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("id")
			return v == id
		}).First()
		if control.Length() > 0 {
			return control
		}
		return nil
	}
	control := label.Find("input, select, textarea, button").First()
	if control.Length() > 0 {
		return control
	}
	return nil
}

// submit sends the form's values. The submitter's own name/value is included.
func (d *Document) submit(ctx context.Context, form, submitter *goquery.Selection) error {
	if form.Length() == 0 {
		return nil
	}
	method := "GET"
	if m, _ := form.Attr("method"); strings.EqualFold(m, "post") {
		method = "POST"
	}
	action, _ := form.Attr("action")
	target, err := d.resolve(action)
	if err != nil {
		return err
	}
	values := formValues(form, submitter)

	if method == "GET" {
		u, err := url.Parse(target)
		if err != nil {
			return err
		}
		u.RawQuery = values.Encode()
		target = u.String()
	}
	d.submissions = append(d.submissions, Submission{Method: method, URL: target, Values: values})

	if d.fetcher == nil {
		return nil
	}
	if method == "GET" {
		return d.load(ctx, method, target, nil)
	}
	return d.load(ctx, method, target, values)
}

func formValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input, textarea, select, button").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		switch s.Get(0).Data {
		case "textarea":
			values.Add(name, s.Text())
		case "select":
			selectedOptions(s).Each(func(_ int, o *goquery.Selection) {
				values.Add(name, optionValue(o))
			})
		case "button":
			if submitter != nil && s.Get(0) == submitter.Get(0) {
				v, _ := s.Attr("value")
				values.Add(name, v)
			}
		case "input":
			v, _ := s.Attr("value")
			switch inputType(s) {
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				if v == "" {
					v = "on"
				}
			case "submit", "image", "reset", "button", "file":
				if submitter == nil || s.Get(0) != submitter.Get(0) {
					return
				}
			}
			values.Add(name, v)
		}
	})
	return values
}
