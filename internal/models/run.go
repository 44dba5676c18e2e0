package models

import (
	"time"

	"github.com/prasenjit/oas-minify/internal/minify"
)

// Run records one minification of a stored or inline document.
type Run struct {
	ID                  string             `json:"id"`
	SpecID              string             `json:"specId,omitempty"` // Empty for inline documents
	SpecName            string             `json:"specName,omitempty"`
	Requests            []string           `json:"requests"`
	Options             minify.Options     `json:"options"`
	Format              string             `json:"format"`
	Success             bool               `json:"success"`
	OriginalSize        int                `json:"originalSize"`
	MinifiedSize        int                `json:"minifiedSize"`
	ReductionPercentage float64            `json:"reductionPercentage"`
	OperationsIncluded  []string           `json:"operationsIncluded"`
	SchemasIncluded     []string           `json:"schemasIncluded"`
	Diagnostics         minify.Diagnostics `json:"diagnostics,omitempty"`
	Output              string             `json:"output,omitempty"` // Rendered minimal document
	Duration            int64              `json:"duration"`         // Duration in nanoseconds
	CreatedAt           time.Time          `json:"createdAt"`
}

// MinifyRequest is the body of a minify call.
type MinifyRequest struct {
	Operations          []string `json:"operations"`
	Content             string   `json:"content,omitempty"` // Inline document, ignored for stored specs
	IncludeDescriptions *bool    `json:"includeDescriptions,omitempty"`
	IncludeExamples     *bool    `json:"includeExamples,omitempty"`
	StrictValidation    *bool    `json:"strictValidation,omitempty"`
	Format              string   `json:"format,omitempty"`
}

// ApplyTo overrides the fields of opts the request sets.
func (r *MinifyRequest) ApplyTo(opts minify.Options) minify.Options {
	if r.IncludeDescriptions != nil {
		opts.IncludeDescriptions = *r.IncludeDescriptions
	}
	if r.IncludeExamples != nil {
		opts.IncludeExamples = *r.IncludeExamples
	}
	if r.StrictValidation != nil {
		opts.StrictValidation = *r.StrictValidation
	}
	return opts
}

// RunFilter represents filters for querying runs.
type RunFilter struct {
	SpecID  string `json:"specId,omitempty"`
	Success *bool  `json:"success,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}
