package parser

import (
	"context"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
	"github.com/prasenjit/oas-minify/internal/minify"
)

// Validator checks documents with kin-openapi. It never follows external
// references, so a minimal document is judged on its own content.
type Validator struct {
	opts []openapi3.ValidationOption
}

// NewValidator creates a validator. Example values are not checked against
// their schemas.
func NewValidator() *Validator {
	return &Validator{
		opts: []openapi3.ValidationOption{openapi3.DisableExamplesValidation()},
	}
}

// ValidateDocument implements minify.Validator.
func (v *Validator) ValidateDocument(ctx context.Context, doc *yaml.Node) []minify.ValidationError {
	data, err := document.MarshalJSON(doc)
	if err != nil {
		return []minify.ValidationError{{Message: "failed to encode document: " + err.Error()}}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	t, err := loader.LoadFromData(data)
	if err != nil {
		return []minify.ValidationError{{Message: "failed to load document: " + err.Error()}}
	}

	if err := t.Validate(loader.Context, v.opts...); err != nil {
		return split(err)
	}
	return nil
}

// Validate reports whether doc is a valid OpenAPI 3 document.
func (v *Validator) Validate(ctx context.Context, doc *yaml.Node) error {
	problems := v.ValidateDocument(ctx, doc)
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = errors.New(p.Message)
	}
	return errors.Join(errs...)
}

func split(err error) []minify.ValidationError {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		out := make([]minify.ValidationError, 0, len(multi))
		for _, e := range multi {
			out = append(out, minify.ValidationError{Message: e.Error()})
		}
		return out
	}
	return []minify.ValidationError{{Message: err.Error()}}
}
