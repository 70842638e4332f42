// Package locator resolves the human names used in step sentences (labels,
// name and id attributes, visible text) into concrete elements. Each lookup
// tries a fixed list of strategies and returns the first element found, so
// ambiguity on a page is settled by priority rather than reported.
package locator

import (
	"context"
	"errors"
	"fmt"

	"github.com/mj1618/websteps/internal/model"
	"github.com/mj1618/websteps/internal/platform"
)

// NotFoundError reports that every strategy for a query came up empty.
type NotFoundError struct {
	Query model.FieldQuery
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s", e.Query)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// control is one element subtype a field lookup can resolve to.
type control struct {
	tag      string
	typ      string // input type; empty for non-input elements
	orAbsent bool   // a missing type attribute also matches
}

func (c control) query() platform.Query {
	q := platform.Query{Tag: c.tag}
	if c.typ != "" {
		q.Attrs = []platform.Attr{{Name: "type", Value: c.typ, OrAbsent: c.orAbsent}}
	}
	return q
}

// Text-like controls in lookup order. When fields of different types share a
// name, the earlier type wins.
var textControls = []control{
	{tag: "input", typ: "text", orAbsent: true},
	{tag: "textarea"},
	{tag: "input", typ: "password"},
	{tag: "input", typ: "datetime"},
	{tag: "input", typ: "datetime-local"},
	{tag: "input", typ: "date"},
	{tag: "input", typ: "month"},
	{tag: "input", typ: "time"},
	{tag: "input", typ: "week"},
	{tag: "input", typ: "number"},
	{tag: "input", typ: "range"},
	{tag: "input", typ: "email"},
	{tag: "input", typ: "url"},
	{tag: "input", typ: "search"},
	{tag: "input", typ: "tel"},
	{tag: "input", typ: "color"},
}

// Controls checked by "Input ... has value".
var valueControls = textControls[:3]

func controlsFor(kind model.FieldKind) ([]control, error) {
	switch kind {
	case model.KindText:
		return textControls, nil
	case model.KindCheckbox:
		return []control{{tag: "input", typ: "checkbox"}}, nil
	case model.KindRadio:
		return []control{{tag: "input", typ: "radio"}}, nil
	case model.KindSelect:
		return []control{{tag: "select"}}, nil
	}
	return nil, fmt.Errorf("locator: %s is not a field kind", kind)
}

// Locator resolves names against one document tree.
type Locator struct {
	tree platform.Tree
}

func New(tree platform.Tree) *Locator {
	return &Locator{tree: tree}
}

// FindField resolves a text-like field, checkbox, radio or select. For each
// control subtype in order it tries the element a matching label points at,
// then the name attribute, then the id attribute.
func (l *Locator) FindField(ctx context.Context, kind model.FieldKind, name string) (platform.ElementRef, error) {
	controls, err := controlsFor(kind)
	if err != nil {
		return nil, err
	}
	return l.findControl(ctx, model.FieldQuery{Kind: kind, Name: name}, controls)
}

// FindValueField resolves the field an "Input ... has value" step checks:
// plain text, textarea or password.
func (l *Locator) FindValueField(ctx context.Context, name string) (platform.ElementRef, error) {
	return l.findControl(ctx, model.FieldQuery{Kind: model.KindText, Name: name}, valueControls)
}

func (l *Locator) findControl(ctx context.Context, fq model.FieldQuery, controls []control) (platform.ElementRef, error) {
	labelled, err := l.labelTargets(ctx, fq.Name)
	if err != nil {
		return nil, err
	}
	for _, c := range controls {
		base := c.query()
		var candidates []platform.Query
		for _, id := range labelled {
			candidates = append(candidates, base.WithAttr("id", id))
		}
		candidates = append(candidates, base.WithAttr("name", fq.Name), base.WithAttr("id", fq.Name))

		ref, err := l.first(ctx, candidates...)
		if err != nil || ref != nil {
			return ref, err
		}
	}
	return nil, &NotFoundError{Query: fq}
}

// labelTargets returns the for attributes of labels whose text is name.
func (l *Locator) labelTargets(ctx context.Context, name string) ([]string, error) {
	labels, err := l.tree.FindAll(ctx, platform.Query{Tag: "label", Text: name})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, label := range labels {
		id, ok, err := l.tree.Attribute(ctx, label, "for")
		if errors.Is(err, platform.ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FindOption resolves a select, then the option inside it whose id, name,
// value or visible text equals optionName, in that priority.
func (l *Locator) FindOption(ctx context.Context, selectName, optionName string) (platform.ElementRef, error) {
	sel, err := l.FindField(ctx, model.KindSelect, selectName)
	if err != nil {
		return nil, err
	}
	base := platform.Query{Tag: "option", Within: sel}
	text := base
	text.Text = optionName
	ref, err := l.first(ctx,
		base.WithAttr("id", optionName),
		base.WithAttr("name", optionName),
		base.WithAttr("value", optionName),
		text,
	)
	if err != nil || ref != nil {
		return ref, err
	}
	return nil, &NotFoundError{Query: model.FieldQuery{Kind: model.KindOption, Name: optionName, Within: selectName}}
}

// Button strategies in priority order.
var buttonQueries = []func(name string) platform.Query{
	inputButton("submit"),
	inputButton("reset"),
	inputButton("button"),
	inputButton("image"),
	func(name string) platform.Query { return platform.Query{Tag: "button"}.WithAttr("id", name) },
	func(name string) platform.Query { return platform.Query{Tag: "button"}.WithAttr("value", name) },
	func(name string) platform.Query { return platform.Query{Tag: "button", Text: name} },
	func(name string) platform.Query { return platform.Query{Tag: "a"}.WithAttr("id", name) },
	func(name string) platform.Query { return platform.Query{Tag: "a", Text: name} },
}

func inputButton(typ string) func(string) platform.Query {
	return func(name string) platform.Query {
		return platform.Query{Tag: "input"}.WithAttr("type", typ).WithAttr("value", name)
	}
}

// FindButton resolves a button by value, id or text: input buttons first,
// then button elements, then anchors styled as buttons.
func (l *Locator) FindButton(ctx context.Context, name string) (platform.ElementRef, error) {
	queries := make([]platform.Query, len(buttonQueries))
	for i, build := range buttonQueries {
		queries[i] = build(name)
	}
	ref, err := l.first(ctx, queries...)
	if err != nil || ref != nil {
		return ref, err
	}
	return nil, &NotFoundError{Query: model.FieldQuery{Kind: model.KindButton, Name: name}}
}

// FindLink resolves an anchor by its visible text.
func (l *Locator) FindLink(ctx context.Context, text string) (platform.ElementRef, error) {
	ref, err := l.first(ctx, platform.Query{Tag: "a", Text: text})
	if err != nil || ref != nil {
		return ref, err
	}
	return nil, &NotFoundError{Query: model.FieldQuery{Kind: model.KindLink, Name: text}}
}

// first returns the first element matched by the earliest query that
// matches anything, or nil when none do.
func (l *Locator) first(ctx context.Context, queries ...platform.Query) (platform.ElementRef, error) {
	for _, q := range queries {
		refs, err := l.tree.FindAll(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			return refs[0], nil
		}
	}
	return nil, nil
}
