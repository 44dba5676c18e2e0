package minify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// Category is a sub-mapping of the components object.
type Category string

const (
	CategorySchemas         Category = "schemas"
	CategoryParameters      Category = "parameters"
	CategoryResponses       Category = "responses"
	CategoryRequestBodies   Category = "requestBodies"
	CategorySecuritySchemes Category = "securitySchemes"
	CategoryHeaders         Category = "headers"
	CategoryExamples        Category = "examples"
	CategoryLinks           Category = "links"
	CategoryCallbacks       Category = "callbacks"
)

// Valid reports whether c is a component category the resolver understands.
func (c Category) Valid() bool {
	switch c {
	case CategorySchemas, CategoryParameters, CategoryResponses, CategoryRequestBodies,
		CategorySecuritySchemes, CategoryHeaders, CategoryExamples, CategoryLinks, CategoryCallbacks:
		return true
	}
	return false
}

const componentsPrefix = "#/components/"

// Ref is a parsed local component reference.
type Ref struct {
	Category Category
	Name     string
}

// String renders r back into pointer form, escaping the name.
func (r Ref) String() string {
	name := strings.ReplaceAll(r.Name, "%", "%25")
	name = strings.ReplaceAll(name, "~", "~0")
	name = strings.ReplaceAll(name, "/", "~1")
	return componentsPrefix + string(r.Category) + "/" + name
}

// Location is the dotted document path of the referenced component.
func (r Ref) Location() string {
	return "components." + string(r.Category) + "." + r.Name
}

// Sentinel errors matched by ReferenceError.Is.
var (
	ErrUnresolvedReference  = errors.New("unresolved reference")
	ErrUnsupportedReference = errors.New("unsupported reference kind")
	ErrCircularReference    = errors.New("circular reference")
)

// ReferenceError describes a $ref that could not be resolved.
type ReferenceError struct {
	Ref    string
	Code   Code
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.kind(), e.Ref, e.Reason)
}

func (e *ReferenceError) kind() string {
	switch e.Code {
	case CodeUnsupportedReferenceKind:
		return "unsupported reference"
	case CodeCircularReference:
		return "circular reference"
	default:
		return "unresolved reference"
	}
}

// Is lets errors.Is match a ReferenceError against the package sentinels.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrUnresolvedReference:
		return e.Code == CodeUnresolvedReference
	case ErrUnsupportedReference:
		return e.Code == CodeUnsupportedReferenceKind
	case ErrCircularReference:
		return e.Code == CodeCircularReference
	}
	return false
}

func unsupported(ref, format string, args ...any) *ReferenceError {
	return &ReferenceError{Ref: ref, Code: CodeUnsupportedReferenceKind, Reason: fmt.Sprintf(format, args...)}
}

// ParseRef parses a reference of the form #/components/{category}/{name}.
// Every other form is reported as an unsupported reference kind.
func ParseRef(ref string) (Ref, error) {
	switch {
	case ref == "":
		return Ref{}, unsupported(ref, "empty reference")
	case strings.Contains(ref, "://"):
		return Ref{}, unsupported(ref, "remote references are not supported")
	case !strings.HasPrefix(ref, "#"):
		return Ref{}, unsupported(ref, "external file references are not supported")
	case !strings.HasPrefix(ref, componentsPrefix):
		return Ref{}, unsupported(ref, "only #/components/... references are supported")
	}

	category, name, ok := strings.Cut(strings.TrimPrefix(ref, componentsPrefix), "/")
	if !ok || category == "" || name == "" {
		return Ref{}, unsupported(ref, "malformed component reference")
	}
	if strings.Contains(name, "/") {
		return Ref{}, unsupported(ref, "references into a component's internals are not supported")
	}
	if !Category(category).Valid() {
		return Ref{}, unsupported(ref, "unknown component category %q", category)
	}

	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.ReplaceAll(name, "~1", "/")
	name = strings.ReplaceAll(name, "~0", "~")

	return Ref{Category: Category(category), Name: name}, nil
}

// RefOf returns the $ref string of a reference object.
func RefOf(n *yaml.Node) (string, bool) {
	v := document.Lookup(n, "$ref")
	if v == nil || v.Kind != yaml.ScalarNode {
		return "", false
	}
	return v.Value, true
}

// Resolver resolves local component references against one document.
// It never mutates the document.
type Resolver struct {
	components *yaml.Node
}

// NewResolver returns a resolver over doc, which may be a DocumentNode or
// the root mapping.
func NewResolver(doc *yaml.Node) *Resolver {
	return &Resolver{components: document.Lookup(document.Root(doc), "components")}
}

// Resolve returns the node designated by ref.
func (r *Resolver) Resolve(ref string) (*yaml.Node, Ref, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, Ref{}, err
	}
	node, err := r.Lookup(parsed)
	return node, parsed, err
}

// Lookup returns the component named by ref.
func (r *Resolver) Lookup(ref Ref) (*yaml.Node, error) {
	node := document.Lookup(document.Lookup(r.components, string(ref.Category)), ref.Name)
	if node == nil {
		return nil, &ReferenceError{
			Ref:    ref.String(),
			Code:   CodeUnresolvedReference,
			Reason: fmt.Sprintf("%s does not exist", ref.Location()),
		}
	}
	return node, nil
}

// Follow resolves ref and keeps following while the target is itself a bare
// reference object. It returns the first non-reference node, or an error
// when the chain is broken or loops back on itself.
func (r *Resolver) Follow(ref string) (*yaml.Node, error) {
	seen := make(map[Ref]bool)
	for {
		node, parsed, err := r.Resolve(ref)
		if err != nil {
			return nil, err
		}
		if seen[parsed] {
			return nil, &ReferenceError{
				Ref:    ref,
				Code:   CodeCircularReference,
				Reason: fmt.Sprintf("%s refers back to itself", parsed.Location()),
			}
		}
		seen[parsed] = true

		next, ok := RefOf(node)
		if !ok {
			return node, nil
		}
		ref = next
	}
}
