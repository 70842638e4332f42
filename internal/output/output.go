// Package output renders command results as YAML or JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes. Tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported output format: %s (use yaml or json)", s)
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	data, err := Marshal(v, OutputFormat, PrettyOutput)
	if err != nil {
		return err
	}
	_, err = Stdout.Write(data)
	return err
}

// Marshal renders v in format. JSON is single-line unless pretty is set;
// the result always ends in a newline.
func Marshal(v interface{}, format Format, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		if pretty {
			enc.SetIndent("", "  ")
		}
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("json encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("yaml encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("yaml encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return buf.Bytes(), nil
}

// PrintJSON serializes v to Stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	return write(v, FormatJSON, false)
}

// PrintPrettyJSON serializes v to Stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	return write(v, FormatJSON, true)
}

// PrintYAML serializes v to Stdout as YAML.
func PrintYAML(v interface{}) error {
	return write(v, FormatYAML, false)
}

func write(v interface{}, format Format, pretty bool) error {
	data, err := Marshal(v, format, pretty)
	if err != nil {
		return err
	}
	_, err = Stdout.Write(data)
	return err
}
