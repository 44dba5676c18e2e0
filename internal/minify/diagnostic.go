package minify

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of problem a diagnostic reports.
type Code string

const (
	// CodeUnresolvedReference means a $ref points at a component that does not exist.
	CodeUnresolvedReference Code = "UnresolvedReference"
	// CodeUnsupportedReferenceKind means a $ref is external, remote, or not a component pointer.
	CodeUnsupportedReferenceKind Code = "UnsupportedReferenceKind"
	// CodeOperationNotFound means an operation request matched nothing.
	CodeOperationNotFound Code = "OperationNotFound"
	// CodeAmbiguousOperationRequest means a request matched more than one operation.
	CodeAmbiguousOperationRequest Code = "AmbiguousOperationRequest"
	// CodeEmptySelection means no operation was selected at all.
	CodeEmptySelection Code = "EmptySelection"
	// CodeDuplicateOperationID means two operations share an operationId.
	CodeDuplicateOperationID Code = "DuplicateOperationId"
	// CodeCircularReference means a chain of bare $ref aliases loops back on itself.
	CodeCircularReference Code = "CircularReference"
	// CodeInvalidDocument means the input is not shaped like an OpenAPI document.
	CodeInvalidDocument Code = "InvalidDocument"
	// CodeValidationFailed means the external validator rejected the minimal document.
	CodeValidationFailed Code = "ValidationFailed"
	// CodeOperationExcluded means a selected operation was left out because
	// its references do not resolve.
	CodeOperationExcluded Code = "OperationExcluded"
)

// Diagnostic is a single error or warning produced while minifying.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"` // dotted path into the document
	Request  string   `json:"request,omitempty"`  // operation request that produced it
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", d.Severity, d.Code)
	if d.Location != "" {
		fmt.Fprintf(&b, " at %s", d.Location)
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	return b.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

func (ds *Diagnostics) errorf(code Code, location, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
	})
}

func (ds *Diagnostics) warnf(code Code, location, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
	})
}

// Errors returns the diagnostics with error severity.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Severity == SeverityError })
}

// Warnings returns the diagnostics with warning severity.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Severity == SeverityWarning })
}

// ByCode returns the diagnostics carrying code.
func (ds Diagnostics) ByCode(code Code) Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Code == code })
}

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (ds Diagnostics) filter(keep func(Diagnostic) bool) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
