// Package steps maps step sentences to handlers and runs them against a
// browser session.
//
// A handler is a func whose first parameter is *Context, whose remaining
// parameters receive the pattern's capture groups in order (string or int),
// and which returns error:
//
//	reg.Register(`I fill in "(.*?)" with "(.*?)"`, func(c *Context, field, value string) error { ... })
//	reg.Register(`I should see "([^"]+)" within (\d+) seconds?`, func(c *Context, text string, n int) error { ... })
//
// Patterns must match the whole sentence. They are tried in registration
// order and the first match wins; overlapping patterns are not detected, so
// register the more specific one first.
package steps

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
)

var (
	contextType = reflect.TypeOf((*Context)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

type definition struct {
	pattern string
	re      *regexp.Regexp
	fn      reflect.Value
	params  []reflect.Kind // capture parameter kinds, in order
}

// Registry is an ordered list of step definitions. It is not safe for
// concurrent registration; register everything before dispatching.
type Registry struct {
	defs []*definition
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a step definition. It panics if the pattern does not compile
// or the handler's signature does not fit the pattern, like
// regexp.MustCompile. Duplicate patterns are allowed; the first registered
// one wins.
func (r *Registry) Register(pattern string, handler interface{}) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		panic(fmt.Sprintf("steps: pattern %q: %v", pattern, err))
	}
	fn := reflect.ValueOf(handler)
	params, err := handlerParams(fn, re.NumSubexp())
	if err != nil {
		panic(fmt.Sprintf("steps: pattern %q: %v", pattern, err))
	}
	r.defs = append(r.defs, &definition{pattern: pattern, re: re, fn: fn, params: params})
}

func handlerParams(fn reflect.Value, captures int) ([]reflect.Kind, error) {
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler is %s, not a func", fn.Kind())
	}
	t := fn.Type()
	if t.NumIn() == 0 || t.In(0) != contextType {
		return nil, fmt.Errorf("handler must take *steps.Context as its first parameter")
	}
	if t.NumOut() != 1 || t.Out(0) != errorType {
		return nil, fmt.Errorf("handler must return exactly one error")
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("handler must not be variadic")
	}
	if got := t.NumIn() - 1; got != captures {
		return nil, fmt.Errorf("handler takes %d captures, pattern has %d groups", got, captures)
	}
	params := make([]reflect.Kind, 0, captures)
	for i := 1; i < t.NumIn(); i++ {
		switch k := t.In(i).Kind(); k {
		case reflect.String, reflect.Int:
			params = append(params, k)
		default:
			return nil, fmt.Errorf("capture parameter %d has unsupported type %s (use string or int)", i, t.In(i))
		}
	}
	return params, nil
}

// Patterns returns the registered patterns in registration order.
func (r *Registry) Patterns() []string {
	out := make([]string, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.pattern
	}
	return out
}

// Match is a step sentence bound to the definition that accepts it.
type Match struct {
	Pattern  string
	Captures []string

	def *definition
}

// Match finds the first definition whose pattern matches the whole of text.
func (r *Registry) Match(text string) (*Match, bool) {
	for _, d := range r.defs {
		if sub := d.re.FindStringSubmatch(text); sub != nil {
			return &Match{Pattern: d.pattern, Captures: sub[1:], def: d}, true
		}
	}
	return nil, false
}

// call invokes the handler with the converted captures.
func (m *Match) call(c *Context) error {
	args := make([]reflect.Value, 0, len(m.Captures)+1)
	args = append(args, reflect.ValueOf(c))
	for i, capture := range m.Captures {
		switch m.def.params[i] {
		case reflect.Int:
			n, err := strconv.Atoi(capture)
			if err != nil {
				return &AssertionError{Message: fmt.Sprintf("capture %d: %q is not a whole number", i+1, capture)}
			}
			args = append(args, reflect.ValueOf(n))
		default:
			args = append(args, reflect.ValueOf(capture))
		}
	}
	out := m.def.fn.Call(args)
	if err, _ := out[0].Interface().(error); err != nil {
		return err
	}
	return nil
}
