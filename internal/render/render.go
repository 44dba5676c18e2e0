// Package render writes minimal documents and run reports.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
	"github.com/prasenjit/oas-minify/internal/minify"
)

// Format is an output serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json in any case. An empty string is yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want yaml or json)", s)
}

// FormatFor picks a format from a file name, falling back to yaml.
func FormatFor(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Render writes doc to w in format.
func Render(w io.Writer, doc *yaml.Node, format Format) error {
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal serializes doc in format. YAML output is block style with a
// two-space indent; JSON output keeps the document's key order.
func Marshal(doc *yaml.Node, format Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	switch format {
	case FormatJSON:
		data, err := document.MarshalJSONIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return data, nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(document.Block(doc)); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// WriteReport writes a human-readable summary of res.
func WriteReport(w io.Writer, res *minify.Result) error {
	var b strings.Builder

	if res.Success {
		b.WriteString("Minification succeeded\n")
	} else {
		b.WriteString("Minification failed\n")
	}
	fmt.Fprintf(&b, "  Operations: %s\n", list(res.OperationsIncluded))
	fmt.Fprintf(&b, "  Schemas:    %s\n", list(res.SchemasIncluded))
	if res.OriginalSize > 0 {
		fmt.Fprintf(&b, "  Size:       %s\n", res.SizeReduction())
	}

	if errs := res.Errors(); len(errs) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errs))
		for _, d := range errs {
			fmt.Fprintf(&b, "  - %s\n", describe(d))
		}
	}
	if warnings := res.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, d := range warnings {
			fmt.Fprintf(&b, "  - %s\n", describe(d))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAnalysis writes a human-readable summary of an analysis.
func WriteAnalysis(w io.Writer, a *minify.Analysis) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Total operations: %d\n", a.TotalOperations)
	b.WriteString("Operations by tag:\n")
	for _, tag := range a.Tags() {
		fmt.Fprintf(&b, "  %s: %s\n", tag, list(a.OperationsByTag[tag]))
	}
	b.WriteString("Operations:\n")
	for _, op := range a.Operations {
		fmt.Fprintf(&b, "  %-7s %s  %s (%d components)\n", op.Method, op.Path, op.Label, op.Components)
	}
	if len(a.ComplexOperations) > 0 {
		fmt.Fprintf(&b, "Complex operations: %s\n", list(a.ComplexOperations))
	}
	for _, d := range a.Diagnostics {
		fmt.Fprintf(&b, "%s\n", describe(d))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describe(d minify.Diagnostic) string {
	s := d.String()
	if d.Request != "" {
		s += fmt.Sprintf(" (request %q)", d.Request)
	}
	return s
}

func list(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
