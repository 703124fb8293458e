package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// render writes result in the configured output format.
// table receives the writer for the human-readable rendering.
func (cli *CLI) render(result any, table func(w io.Writer) error) error {
	switch format := strings.ToLower(cli.viperInst.GetString("output")); format {
	case "json":
		return writeJSON(cli.out, result)
	case "yaml":
		encoder := yaml.NewEncoder(cli.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	case "table", "":
		return table(cli.out)
	default:
		return NewConfigError("render output", fmt.Sprintf("unsupported output format %q", format),
			"Use --output table, json or yaml")
	}
}

// writeJSON writes v indented, leaving HTML characters readable
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeValue prints a canonical value for humans: strings as-is, everything
// else as indented JSON
func writeValue(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	return writeJSON(w, v)
}

// encodedSize returns the size of v as stored in a snapshot file
func encodedSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
