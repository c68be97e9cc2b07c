package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats shared by listing commands.
const (
	outputPlain = "plain"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// writeOutput renders v as JSON or YAML, or calls plain for the text form.
func writeOutput(w io.Writer, format string, v any, plain func(io.Writer) error) error {
	switch format {
	case "", outputPlain:
		return plain(w)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want plain, json or yaml)", format)
	}
}
