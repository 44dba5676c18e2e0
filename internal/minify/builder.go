package minify

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// BuildOptions controls which optional descriptive fields survive.
type BuildOptions struct {
	IncludeDescriptions bool
	IncludeExamples     bool
}

// Builder assembles minimal documents. It copies every node it keeps, so
// the original document is never modified.
type Builder struct {
	opts BuildOptions
}

// NewBuilder returns a builder with opts.
func NewBuilder(opts BuildOptions) *Builder {
	return &Builder{opts: opts}
}

// Build returns a new document holding only ops and the components in
// closure. Root fields are visited in their original order. openapi, info,
// servers and externalDocs are copied verbatim; paths, components, tags and
// security are filtered down to what the selection needs.
func (b *Builder) Build(original *yaml.Node, ops []OperationRef, closure *Closure) *yaml.Node {
	root := document.Root(original)

	selected := make(map[string]map[string]bool)
	inheritsSecurity := false
	usedTags := make(map[string]bool)
	for _, op := range ops {
		if selected[op.Path] == nil {
			selected[op.Path] = make(map[string]bool)
		}
		selected[op.Path][op.Method] = true
		if !document.Has(op.Node, "security") {
			inheritsSecurity = true
		}
		for _, tag := range op.Tags {
			usedTags[tag] = true
		}
	}

	out := document.NewMapping()
	for key, value := range document.Pairs(root) {
		switch {
		case key == "paths":
			document.Append(out, key, b.buildPaths(value, selected))
		case key == "components":
			if components := b.buildComponents(value, closure); components != nil {
				document.Append(out, key, components)
			}
		case key == "security":
			if inheritsSecurity {
				document.Append(out, key, document.Clone(value))
			}
		case key == "tags":
			if tags := filterTags(value, usedTags); tags != nil {
				document.Append(out, key, tags)
			}
		case key == "openapi", key == "info", key == "servers", key == "externalDocs",
			key == "jsonSchemaDialect", strings.HasPrefix(key, "x-"):
			document.Append(out, key, document.Clone(value))
		}
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{out}}
}

// buildPaths keeps the selected path items, in original order, reduced to
// the selected methods. Path-level fields that are not operations stay.
func (b *Builder) buildPaths(paths *yaml.Node, selected map[string]map[string]bool) *yaml.Node {
	out := document.NewMapping()
	for path, item := range document.Pairs(paths) {
		methods := selected[path]
		if len(methods) == 0 {
			continue
		}
		pruned := document.NewMapping()
		for key, value := range document.Pairs(item) {
			if isHTTPMethod(key) && !methods[key] {
				continue
			}
			if b.drop(key, shapeObject) {
				continue
			}
			document.Append(pruned, key, b.clone(value, fieldShape(key)))
		}
		document.Append(out, path, pruned)
	}
	return out
}

// buildComponents keeps exactly the closure, preserving category and entry
// order. It returns nil when nothing is left.
func (b *Builder) buildComponents(components *yaml.Node, closure *Closure) *yaml.Node {
	if closure == nil || closure.Len() == 0 {
		return nil
	}
	out := document.NewMapping()
	for key, entries := range document.Pairs(components) {
		category := Category(key)
		if !category.Valid() {
			continue
		}
		if category == CategoryExamples && !b.opts.IncludeExamples {
			continue
		}
		kept := document.NewMapping()
		for name, value := range document.Pairs(entries) {
			if closure.Has(category, name) {
				document.Append(kept, name, b.clone(value, categoryShape(category)))
			}
		}
		if len(kept.Content) > 0 {
			document.Append(out, key, kept)
		}
	}
	if len(out.Content) == 0 {
		return nil
	}
	return out
}

// drop reports whether an object field is removed by the build options.
// Response descriptions are required by OpenAPI and always kept.
func (b *Builder) drop(field string, s shape) bool {
	switch field {
	case "description":
		return !b.opts.IncludeDescriptions && s != shapeResponse
	case "example", "examples":
		return !b.opts.IncludeExamples
	}
	return false
}

// clone deep-copies n while stripping the fields drop rejects. Only fields of
// OpenAPI objects are candidates; names in named maps and literal values are
// copied as they are.
func (b *Builder) clone(n *yaml.Node, s shape) *yaml.Node {
	n = document.Deref(n)
	if n == nil {
		return nil
	}
	if s == shapeLiteral || (b.opts.IncludeDescriptions && b.opts.IncludeExamples) {
		return document.Clone(n)
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := *n
		out.Anchor = ""
		out.Content = nil
		for key, value := range document.Pairs(n) {
			if s.named() {
				document.Append(&out, key, b.clone(value, s.elem(false)))
				continue
			}
			if b.drop(key, s) {
				continue
			}
			document.Append(&out, key, b.clone(value, fieldShape(key)))
		}
		return &out
	case yaml.SequenceNode:
		out := *n
		out.Anchor = ""
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, item := range n.Content {
			out.Content[i] = b.clone(item, s.elem(true))
		}
		return &out
	default:
		return document.Clone(n)
	}
}

// filterTags keeps the root tag entries used by a selected operation.
func filterTags(tags *yaml.Node, used map[string]bool) *yaml.Node {
	out := document.NewSequence()
	for _, tag := range document.Items(tags) {
		if used[document.String(tag, "name")] {
			out.Content = append(out.Content, document.Clone(tag))
		}
	}
	if len(out.Content) == 0 {
		return nil
	}
	return out
}
