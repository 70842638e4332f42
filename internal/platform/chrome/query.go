package chrome

import (
	"fmt"
	"strings"

	"github.com/mj1618/websteps/internal/platform"
)

// XPath translates an unscoped query into an XPath expression for
// DOM.performSearch.
func XPath(q platform.Query) string {
	var b strings.Builder
	b.WriteString("//")
	if q.Tag == "" {
		b.WriteString("*")
	} else {
		b.WriteString(q.Tag)
	}
	for _, a := range q.Attrs {
		if a.OrAbsent {
			fmt.Fprintf(&b, "[@%s=%s or not(@%s)]", a.Name, xpathLiteral(a.Value), a.Name)
			continue
		}
		fmt.Fprintf(&b, "[@%s=%s]", a.Name, xpathLiteral(a.Value))
	}
	if q.Text != "" {
		fmt.Fprintf(&b, "[normalize-space(.)=%s]", xpathLiteral(q.Text))
	}
	if q.Contains != "" {
		fmt.Fprintf(&b, "[contains(normalize-space(.), %s)]", xpathLiteral(q.Contains))
	}
	return b.String()
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	var args []string
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// CSS translates the tag and attribute conditions of q into a selector list.
// Text and scope conditions are applied by the caller.
func CSS(q platform.Query) string {
	tag := q.Tag
	if tag == "" {
		tag = "*"
	}
	selectors := []string{tag}
	for _, a := range q.Attrs {
		eq := fmt.Sprintf(`[%s="%s"]`, a.Name, cssEscape(a.Value))
		var next []string
		for _, sel := range selectors {
			next = append(next, sel+eq)
			if a.OrAbsent {
				next = append(next, fmt.Sprintf("%s:not([%s])", sel, a.Name))
			}
		}
		selectors = next
	}
	return strings.Join(selectors, ", ")
}

func cssEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return r.Replace(s)
}
