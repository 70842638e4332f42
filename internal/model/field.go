package model

import "fmt"

// FieldKind is the category of element a step refers to by name.
type FieldKind string

const (
	KindText     FieldKind = "text-like"
	KindCheckbox FieldKind = "checkbox"
	KindRadio    FieldKind = "radio"
	KindSelect   FieldKind = "select"
	KindButton   FieldKind = "button"
	KindLink     FieldKind = "link"
	KindOption   FieldKind = "option"
)

// FieldQuery names an element the way a step sentence does: by label, name,
// id or visible text. Within holds the enclosing select for option queries.
type FieldQuery struct {
	Kind   FieldKind `yaml:"kind"             json:"kind"`
	Name   string    `yaml:"name"             json:"name"`
	Within string    `yaml:"within,omitempty" json:"within,omitempty"`
}

func (q FieldQuery) String() string {
	if q.Within != "" {
		return fmt.Sprintf("%s %q in %q", q.Kind, q.Name, q.Within)
	}
	return fmt.Sprintf("%s %q", q.Kind, q.Name)
}
