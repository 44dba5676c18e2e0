package models

import (
	"testing"

	"github.com/prasenjit/oas-minify/internal/minify"
)

func TestMinifyRequest_ApplyTo(t *testing.T) {
	off := false
	on := true
	req := MinifyRequest{IncludeDescriptions: &off, IncludeExamples: &on}

	opts := req.ApplyTo(minify.DefaultOptions())

	if opts.IncludeDescriptions {
		t.Error("Expected descriptions to be disabled")
	}
	if !opts.IncludeExamples {
		t.Error("Expected examples to be enabled")
	}
	if !opts.StrictValidation {
		t.Error("Expected strict validation to keep its default")
	}
}

func TestMinifyRequest_ApplyToEmpty(t *testing.T) {
	req := MinifyRequest{}
	defaults := minify.DefaultOptions()

	if got := req.ApplyTo(defaults); got != defaults {
		t.Errorf("Expected defaults %+v, got %+v", defaults, got)
	}
}
