package platform

import (
	"fmt"
	"strings"
	"time"
)

// Attr is an attribute equality condition.
type Attr struct {
	Name     string
	Value    string
	OrAbsent bool // also satisfied when the attribute is missing
}

// Query is a structural predicate over the document tree. Drivers translate it
// into their own query language; the zero Query matches every element.
type Query struct {
	Tag          string     // element name, empty matches any element
	Attrs        []Attr     // all conditions must hold
	Text         string     // normalized text equals (empty = no condition)
	Contains     string     // normalized text contains (empty = no condition)
	Within       ElementRef // restrict to descendants of this element (nil = whole document)
	ChildrenOnly bool       // with Within, restrict to direct children
}

// String describes the query for logs and error messages.
func (q Query) String() string {
	var parts []string
	tag := q.Tag
	if tag == "" {
		tag = "*"
	}
	parts = append(parts, tag)
	for _, a := range q.Attrs {
		s := fmt.Sprintf("@%s=%q", a.Name, a.Value)
		if a.OrAbsent {
			s += "|absent"
		}
		parts = append(parts, s)
	}
	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", q.Text))
	}
	if q.Contains != "" {
		parts = append(parts, fmt.Sprintf("contains=%q", q.Contains))
	}
	if q.Within != nil {
		if q.ChildrenOnly {
			parts = append(parts, "children-of-scope")
		} else {
			parts = append(parts, "within-scope")
		}
	}
	return strings.Join(parts, " ")
}

// WithAttr returns a copy of q with an extra attribute condition.
func (q Query) WithAttr(name, value string) Query {
	attrs := make([]Attr, 0, len(q.Attrs)+1)
	attrs = append(attrs, q.Attrs...)
	q.Attrs = append(attrs, Attr{Name: name, Value: value})
	return q
}

// NormalizeSpace collapses runs of whitespace and trims the ends, matching
// XPath normalize-space().
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Options configures a session opened through a registered driver.
type Options struct {
	Headless    bool          // run the browser without a window
	BrowserPath string        // explicit browser executable (empty = autodetect)
	UserAgent   string        // override the user agent (empty = driver default)
	Timeout     time.Duration // bound on session start-up (0 = none)
}
