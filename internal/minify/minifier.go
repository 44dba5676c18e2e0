// Package minify reduces an OpenAPI document to the operations a caller asks
// for plus every component those operations transitively reference.
//
// The pipeline is locate, analyze, build, measure. Each step reports
// per-item problems as Diagnostics instead of failing, so one broken
// reference or unknown request never hides the rest of the result. The input
// document is never modified.
package minify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// Options controls what a minification keeps.
type Options struct {
	IncludeDescriptions bool `json:"includeDescriptions" yaml:"includeDescriptions" mapstructure:"includeDescriptions"`
	IncludeExamples     bool `json:"includeExamples" yaml:"includeExamples" mapstructure:"includeExamples"`
	StrictValidation    bool `json:"strictValidation" yaml:"strictValidation" mapstructure:"strictValidation"`
}

// DefaultOptions keeps descriptions, drops examples, and validates the output
// when a validator is available.
func DefaultOptions() Options {
	return Options{
		IncludeDescriptions: true,
		IncludeExamples:     false,
		StrictValidation:    true,
	}
}

// ValidationError is one problem reported by a Validator.
type ValidationError struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// Validator checks a minimal document against the OpenAPI specification.
type Validator interface {
	ValidateDocument(ctx context.Context, doc *yaml.Node) []ValidationError
}

// Result is the outcome of one minification.
type Result struct {
	Success             bool             `json:"success"`
	Document            *yaml.Node       `json:"-"`
	OriginalSize        int              `json:"originalSize"`
	MinifiedSize        int              `json:"minifiedSize"`
	ReductionPercentage float64          `json:"reductionPercentage"`
	OperationsIncluded  []string         `json:"operationsIncluded"`
	SchemasIncluded     []string         `json:"schemasIncluded"`
	Components          []ComponentKey   `json:"components,omitempty"`
	Matches             []OperationMatch `json:"matches,omitempty"`
	Diagnostics         Diagnostics      `json:"diagnostics,omitempty"`
}

// Errors returns the error diagnostics.
func (r *Result) Errors() Diagnostics {
	return r.Diagnostics.Errors()
}

// Warnings returns the warning diagnostics.
func (r *Result) Warnings() Diagnostics {
	return r.Diagnostics.Warnings()
}

// SizeReduction renders the size change, e.g. "87.5% reduction (400 → 50 lines)".
func (r *Result) SizeReduction() string {
	return fmt.Sprintf("%.1f%% reduction (%d → %d lines)", r.ReductionPercentage, r.OriginalSize, r.MinifiedSize)
}

// Option configures a Minifier.
type Option func(*Minifier)

// WithValidator sets the validator used in strict mode.
func WithValidator(v Validator) Option {
	return func(m *Minifier) {
		m.validator = v
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(m *Minifier) {
		if l != nil {
			m.logger = l
		}
	}
}

// Minifier runs the minification pipeline. A Minifier holds no per-call
// state and may be shared between goroutines.
type Minifier struct {
	opts      Options
	validator Validator
	logger    *slog.Logger
}

// New returns a Minifier with opts.
func New(opts Options, options ...Option) *Minifier {
	m := &Minifier{
		opts:   opts,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Options returns the options the Minifier was built with.
func (m *Minifier) Options() Options {
	return m.opts
}

// Minify selects the operations named by requests and builds the smallest
// document that still describes them. Operations that depend on a broken
// reference are left out. Success is false only when no operation remains,
// the input is not an OpenAPI document, or strict validation rejected the
// result. Every other problem is a diagnostic.
func (m *Minifier) Minify(ctx context.Context, doc *yaml.Node, requests []string) *Result {
	start := time.Now()
	res := &Result{
		OperationsIncluded: []string{},
		SchemasIncluded:    []string{},
	}

	if !document.IsMapping(document.Root(doc)) {
		res.Diagnostics.errorf(CodeInvalidDocument, "", "document root must be a mapping")
		m.logger.Warn("minification rejected", "reason", "invalid document")
		return res
	}

	locator, diags := NewLocator(doc)
	res.Diagnostics = append(res.Diagnostics, diags...)
	matches, diags := locator.Find(requests)
	res.Diagnostics = append(res.Diagnostics, diags...)
	res.Matches = matches

	if len(matches) == 0 {
		res.Diagnostics.errorf(CodeEmptySelection, "paths", "no operations were selected from %d request(s)", len(requests))
		m.logger.Warn("minification produced an empty selection", "requests", len(requests))
		return res
	}

	selected := make([]OperationRef, len(matches))
	for i, match := range matches {
		selected[i] = match.Operation
	}
	m.logger.Debug("operations selected", "requests", len(requests), "operations", len(selected))

	analyzer := NewAnalyzer(doc)
	ops, diags := partition(analyzer, selected)
	res.Diagnostics = append(res.Diagnostics, diags...)
	if len(ops) == 0 {
		res.Diagnostics.errorf(CodeEmptySelection, "paths", "none of the %d selected operation(s) has resolvable references", len(selected))
		m.logger.Warn("minification produced no operations", "requests", len(requests), "excluded", len(selected))
		return res
	}
	for _, op := range ops {
		res.OperationsIncluded = append(res.OperationsIncluded, op.Label())
	}

	closure, _ := analyzer.Closure(ops)
	res.Components = closure.Keys()
	if names := closure.Names(CategorySchemas); names != nil {
		res.SchemasIncluded = names
	}
	m.logger.Debug("closure computed", "components", closure.Len(), "schemas", len(res.SchemasIncluded))

	builder := NewBuilder(BuildOptions{
		IncludeDescriptions: m.opts.IncludeDescriptions,
		IncludeExamples:     m.opts.IncludeExamples,
	})
	minimal := builder.Build(doc, ops, closure)

	size := Measure(doc, minimal)
	res.OriginalSize = size.OriginalSize
	res.MinifiedSize = size.MinifiedSize
	res.ReductionPercentage = size.ReductionPercentage
	res.Document = minimal
	res.Success = true

	if m.opts.StrictValidation {
		m.validate(ctx, res)
	}

	m.logger.Info("minification finished",
		"success", res.Success,
		"operations", len(res.OperationsIncluded),
		"components", closure.Len(),
		"original_lines", res.OriginalSize,
		"minified_lines", res.MinifiedSize,
		"errors", len(res.Errors()),
		"warnings", len(res.Warnings()),
		"duration", time.Since(start))

	return res
}

// partition computes the closure of each operation on its own and keeps the
// operations whose references all resolve. Reference diagnostics are reported
// once per location, followed by one OperationExcluded warning per dropped
// operation.
func partition(analyzer *Analyzer, selected []OperationRef) ([]OperationRef, Diagnostics) {
	var (
		kept     []OperationRef
		diags    Diagnostics
		excluded Diagnostics
		reported = make(map[Diagnostic]bool)
	)
	for _, op := range selected {
		_, opDiags := analyzer.Closure([]OperationRef{op})
		broken := false
		for _, d := range opDiags {
			if d.Severity == SeverityError && (d.Code == CodeUnresolvedReference || d.Code == CodeUnsupportedReferenceKind) {
				broken = true
			}
			if !reported[d] {
				reported[d] = true
				diags = append(diags, d)
			}
		}
		if broken {
			excluded.warnf(CodeOperationExcluded, op.Location(), "operation %s left out: it depends on a reference that does not resolve", op.Label())
			continue
		}
		kept = append(kept, op)
	}
	return kept, append(diags, excluded...)
}

func (m *Minifier) validate(ctx context.Context, res *Result) {
	if m.validator == nil {
		res.Diagnostics.warnf(CodeValidationFailed, "", "strict validation requested but no validator is configured")
		return
	}
	problems := m.validator.ValidateDocument(ctx, res.Document)
	if len(problems) == 0 {
		return
	}
	for _, p := range problems {
		res.Diagnostics.errorf(CodeValidationFailed, p.Location, "%s", p.Message)
	}
	res.Success = false
	res.Document = nil
}

// Minify runs a Minifier with DefaultOptions and no validator.
func Minify(ctx context.Context, doc *yaml.Node, requests []string) *Result {
	return New(DefaultOptions()).Minify(ctx, doc, requests)
}
