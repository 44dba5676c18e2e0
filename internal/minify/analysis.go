package minify

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// complexityThreshold is the closure size at which an operation counts as complex.
const complexityThreshold = 5

// untagged groups operations that declare no tags.
const untagged = "untagged"

// OperationSummary describes one operation in an Analysis.
type OperationSummary struct {
	Label       string   `json:"label"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	OperationID string   `json:"operationId,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Components  int      `json:"components"`
	Schemas     []string `json:"schemas,omitempty"`
}

// Analysis is an overview of a document's operations and how much of the
// components object each one pulls in.
type Analysis struct {
	TotalOperations   int                 `json:"totalOperations"`
	Operations        []OperationSummary  `json:"operations"`
	OperationsByTag   map[string][]string `json:"operationsByTag"`
	OperationsByPath  map[string][]string `json:"operationsByPath"`
	ComplexOperations []string            `json:"complexOperations"`
	SchemaUsage       map[string]int      `json:"schemaUsage"`
	Diagnostics       Diagnostics         `json:"diagnostics,omitempty"`
}

// Analyze computes the closure of every operation in doc on its own. Reference
// problems are reported once per location even though many operations may
// cross the same broken edge.
func Analyze(doc *yaml.Node) *Analysis {
	a := &Analysis{
		Operations:        []OperationSummary{},
		OperationsByTag:   make(map[string][]string),
		OperationsByPath:  make(map[string][]string),
		ComplexOperations: []string{},
		SchemaUsage:       make(map[string]int),
	}

	locator, diags := NewLocator(doc)
	a.Diagnostics = append(a.Diagnostics, diags...)
	analyzer := NewAnalyzer(doc)
	reported := make(map[Diagnostic]bool)

	for _, op := range locator.Operations() {
		closure, diags := analyzer.Closure([]OperationRef{op})
		for _, d := range diags {
			if !reported[d] {
				reported[d] = true
				a.Diagnostics = append(a.Diagnostics, d)
			}
		}

		label := op.Label()
		schemas := closure.Names(CategorySchemas)
		a.Operations = append(a.Operations, OperationSummary{
			Label:       label,
			Method:      strings.ToUpper(op.Method),
			Path:        op.Path,
			OperationID: op.OperationID,
			Summary:     op.Summary,
			Tags:        op.Tags,
			Components:  closure.Len(),
			Schemas:     schemas,
		})

		if len(op.Tags) == 0 {
			a.OperationsByTag[untagged] = append(a.OperationsByTag[untagged], label)
		}
		for _, tag := range op.Tags {
			a.OperationsByTag[tag] = append(a.OperationsByTag[tag], label)
		}
		a.OperationsByPath[op.Path] = append(a.OperationsByPath[op.Path], strings.ToUpper(op.Method))

		if closure.Len() >= complexityThreshold {
			a.ComplexOperations = append(a.ComplexOperations, label)
		}
		for _, name := range schemas {
			a.SchemaUsage[name]++
		}
	}

	a.TotalOperations = len(a.Operations)
	return a
}

// Tags returns the tag names of the analysis in sorted order.
func (a *Analysis) Tags() []string {
	tags := make([]string, 0, len(a.OperationsByTag))
	for tag := range a.OperationsByTag {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
