package minify

import (
	"cmp"
	"errors"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// ComponentKey names one entry of the components object.
type ComponentKey struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
}

func (k ComponentKey) String() string {
	return string(k.Category) + "/" + k.Name
}

// Closure is the set of components reachable from a set of operations.
type Closure struct {
	keys map[ComponentKey]struct{}
}

// NewClosure returns an empty closure.
func NewClosure() *Closure {
	return &Closure{keys: make(map[ComponentKey]struct{})}
}

// Add inserts a component.
func (c *Closure) Add(category Category, name string) {
	c.keys[ComponentKey{Category: category, Name: name}] = struct{}{}
}

// Has reports whether the component is in the closure.
func (c *Closure) Has(category Category, name string) bool {
	_, ok := c.keys[ComponentKey{Category: category, Name: name}]
	return ok
}

// Len returns the number of components in the closure.
func (c *Closure) Len() int {
	return len(c.keys)
}

// Names returns the sorted names held for category.
func (c *Closure) Names(category Category) []string {
	var names []string
	for k := range c.keys {
		if k.Category == category {
			names = append(names, k.Name)
		}
	}
	slices.Sort(names)
	return names
}

// Keys returns every component, sorted by category then name.
func (c *Closure) Keys() []ComponentKey {
	keys := make([]ComponentKey, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b ComponentKey) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return keys
}

// Analyzer computes dependency closures over one document.
type Analyzer struct {
	root     *yaml.Node
	resolver *Resolver
}

// NewAnalyzer returns an analyzer over doc.
func NewAnalyzer(doc *yaml.Node) *Analyzer {
	root := document.Root(doc)
	return &Analyzer{root: root, resolver: NewResolver(root)}
}

type edge struct {
	ref string
	loc string
}

// Closure computes every component reachable from ops by following
// references, plus the security schemes their requirements name. Each
// component is expanded at most once, which is what keeps recursive schemas
// from looping. Broken or unsupported references are reported once each and
// skipped; the rest of the traversal continues.
func (a *Analyzer) Closure(ops []OperationRef) (*Closure, Diagnostics) {
	var (
		closure = NewClosure()
		diags   Diagnostics
		visited = make(map[ComponentKey]bool)
		skipped = make(map[string]bool)
		queue   []edge
	)

	enqueue := func(ref, loc string) {
		queue = append(queue, edge{ref: ref, loc: loc})
	}

	sharedParams := make(map[*yaml.Node]bool)
	for _, op := range ops {
		if params := document.Lookup(op.PathItem, "parameters"); params != nil && !sharedParams[params] {
			sharedParams[params] = true
			walkRefs(params, shapeNamed, "paths."+op.Path+".parameters", enqueue)
		}
		walkRefs(op.Node, shapeObject, op.Location(), enqueue)
		for _, e := range a.securityEdges(op) {
			enqueue(e.ref, e.loc)
		}
	}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		parsed, err := ParseRef(e.ref)
		if err != nil {
			if !skipped[e.ref] {
				skipped[e.ref] = true
				diags.errorf(CodeUnsupportedReferenceKind, e.loc, "%v", err)
			}
			continue
		}

		key := ComponentKey{Category: parsed.Category, Name: parsed.Name}
		if visited[key] {
			continue
		}
		visited[key] = true

		node, err := a.resolver.Lookup(parsed)
		if err != nil {
			diags.errorf(CodeUnresolvedReference, e.loc, "%v", err)
			continue
		}
		closure.Add(key.Category, key.Name)

		if _, isAlias := RefOf(node); isAlias {
			if _, err := a.resolver.Follow(e.ref); errors.Is(err, ErrCircularReference) {
				diags.warnf(CodeCircularReference, parsed.Location(), "%v", err)
			}
		}

		walkRefs(node, categoryShape(key.Category), parsed.Location(), enqueue)
	}

	return closure, diags
}

// securityEdges returns one edge per scheme named by the requirements that
// apply to op: its own security field, or the document-level one when the
// operation does not declare any.
func (a *Analyzer) securityEdges(op OperationRef) []edge {
	reqs := document.Lookup(op.Node, "security")
	loc := op.Location() + ".security"
	if reqs == nil {
		reqs = document.Lookup(a.root, "security")
		loc = "security"
	}

	var edges []edge
	for i, req := range document.Items(reqs) {
		for name := range document.Pairs(req) {
			edges = append(edges, edge{
				ref: Ref{Category: CategorySecuritySchemes, Name: name}.String(),
				loc: loc + "[" + strconv.Itoa(i) + "]." + name,
			})
		}
	}
	return edges
}

// ClosureOf is a convenience wrapper around NewAnalyzer(doc).Closure(ops).
func ClosureOf(doc *yaml.Node, ops []OperationRef) (*Closure, Diagnostics) {
	return NewAnalyzer(doc).Closure(ops)
}
