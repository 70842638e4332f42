// Package scenario reads YAML step lists and runs them through a dispatcher.
//
// A scenario file is either a bare list of steps or a document with a name:
//
//	name: sign in
//	steps:
//	  - I visit site page "/login"
//	  - I fill in "Username" with "bob"
//	  - step: 'I select the following from "Toppings":'
//	    lines: [Ham, Olives]
//	  - I should see "Ham" within 3 seconds
//	  - The following options from "Toppings" should be selected:
//	      - Ham
//	      - Olives
//
// The last form, a step ending in a colon with the lines nested under it,
// is shorthand for the step/lines mapping.
package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one sentence plus its optional multiline payload.
type Step struct {
	Text  string   `yaml:"step"            json:"step"`
	Lines []string `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// UnmarshalYAML accepts a plain string, a {step, lines} mapping, or a
// single-key mapping from step text to its lines.
func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Decode(&s.Text)
	case yaml.MappingNode:
		if len(n.Content) == 2 && n.Content[0].Value != "step" {
			s.Text = n.Content[0].Value + ":"
			if n.Content[1].Tag == "!!null" {
				return nil
			}
			return n.Content[1].Decode(&s.Lines)
		}
		var raw struct {
			Step  string   `yaml:"step"`
			Lines []string `yaml:"lines"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		if raw.Step == "" {
			return fmt.Errorf("line %d: step mapping needs a non-empty \"step\" key", n.Line)
		}
		s.Text, s.Lines = raw.Step, raw.Lines
		return nil
	}
	return fmt.Errorf("line %d: a step must be a string or a mapping with \"step\" and \"lines\"", n.Line)
}

// Scenario is an ordered list of steps.
type Scenario struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Steps []Step `yaml:"steps"          json:"steps"`
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("no steps provided: expected a YAML list of steps")
	}

	sc := &Scenario{}
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&sc.Steps); err != nil {
			return nil, fmt.Errorf("failed to parse scenario steps: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(sc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("scenario must be a list of steps or a mapping with \"steps\"")
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("no steps provided: expected a YAML list of steps")
	}
	for i, st := range sc.Steps {
		if strings.TrimSpace(st.Text) == "" {
			return nil, fmt.Errorf("step %d is empty", i+1)
		}
	}
	return sc, nil
}

// Read parses a scenario from r. name is used when the document has none.
func Read(r io.Reader, name string) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = name
	}
	return sc, nil
}

// Load reads a scenario file. Unnamed scenarios take the file's base name.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sc, err := Read(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}
