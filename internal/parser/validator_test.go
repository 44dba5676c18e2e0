package parser

import (
	"context"
	"testing"

	"github.com/prasenjit/oas-minify/internal/minify"
)

func TestValidator_ValidDocument(t *testing.T) {
	doc, err := NewParser().Parse([]byte(testSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	v := NewValidator()
	if problems := v.ValidateDocument(context.Background(), doc); len(problems) != 0 {
		t.Errorf("Expected no problems, got %v", problems)
	}
	if err := v.Validate(context.Background(), doc); err != nil {
		t.Errorf("Expected valid document, got %v", err)
	}
}

func TestValidator_InvalidDocument(t *testing.T) {
	doc, err := NewParser().Parse([]byte("openapi: 3.0.3\npaths: {}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	v := NewValidator()
	problems := v.ValidateDocument(context.Background(), doc)
	if len(problems) == 0 {
		t.Fatal("Expected problems for a document without info")
	}
	if problems[0].Message == "" {
		t.Error("Expected problem message")
	}
	if err := v.Validate(context.Background(), doc); err == nil {
		t.Error("Expected validation error")
	}
}

func TestValidator_MinifiedOutput(t *testing.T) {
	doc, err := NewParser().Parse([]byte(testSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	m := minify.New(minify.DefaultOptions(), minify.WithValidator(NewValidator()))
	res := m.Minify(context.Background(), doc, []string{"getUsers"})

	if !res.Success {
		t.Fatalf("Expected success, got diagnostics %v", res.Diagnostics)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", res.Diagnostics)
	}
}

const brokenRefSpec = `openapi: 3.0.3
info:
  title: Broken
  version: "1"
paths:
  /a:
    get:
      operationId: getA
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
  /b:
    get:
      operationId: getB
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
components:
  schemas:
    A:
      type: string
`

func TestValidator_MinifiedOutputWithBrokenReference(t *testing.T) {
	doc, err := NewParser().Parse([]byte(brokenRefSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	m := minify.New(minify.DefaultOptions(), minify.WithValidator(NewValidator()))
	res := m.Minify(context.Background(), doc, []string{"getA", "getB"})

	if !res.Success || res.Document == nil {
		t.Fatalf("Expected success with a document, got diagnostics %v", res.Diagnostics)
	}
	if len(res.OperationsIncluded) != 1 || res.OperationsIncluded[0] != "getA" {
		t.Errorf("Expected only getA, got %v", res.OperationsIncluded)
	}
	if got := res.Errors().ByCode(minify.CodeUnresolvedReference); len(got) != 1 {
		t.Errorf("Expected one UnresolvedReference, got %v", got)
	}
	if got := res.Diagnostics.ByCode(minify.CodeValidationFailed); len(got) != 0 {
		t.Errorf("Expected the minimal document to validate, got %v", got)
	}
	if err := NewValidator().Validate(context.Background(), res.Document); err != nil {
		t.Errorf("Expected valid minimal document, got %v", err)
	}
}
