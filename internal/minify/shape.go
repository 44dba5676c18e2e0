package minify

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// shape tells a walker how to read the keys of a mapping: as fixed field
// names of an OpenAPI object, or as user-chosen names (property names,
// status codes, media types). A property called "description" is a name,
// not a description field, and must survive stripping.
type shape int

const (
	shapeObject    shape = iota // keys are OpenAPI field names
	shapeResponse               // a Response object; its description is required
	shapeNamed                  // keys are names, values are objects
	shapeResponses              // keys are status codes, values are responses
	shapeCallbacks              // keys are callback names, values are callbacks
	shapeCallback               // keys are runtime expressions, values are path items
	shapeExamples               // a map of Example objects, or a list of literal values
	shapeMapping                // discriminator mapping: names to schema references
	shapeLiteral                // user data, never descended into
)

func (s shape) named() bool {
	switch s {
	case shapeNamed, shapeResponses, shapeCallbacks, shapeCallback, shapeExamples, shapeMapping:
		return true
	}
	return false
}

// elem is the shape of the values held by a named shape, or of the items of
// a sequence.
func (s shape) elem(seq bool) shape {
	switch s {
	case shapeResponses:
		return shapeResponse
	case shapeCallbacks:
		return shapeCallback
	case shapeExamples:
		if seq {
			return shapeLiteral
		}
		return shapeObject
	case shapeMapping, shapeLiteral:
		return shapeLiteral
	case shapeNamed, shapeCallback:
		return shapeObject
	default:
		return s
	}
}

// fieldShape returns the shape of the value stored under an object field.
func fieldShape(field string) shape {
	if strings.HasPrefix(field, "x-") {
		return shapeLiteral
	}
	switch field {
	case "properties", "patternProperties", "$defs", "definitions", "dependentSchemas",
		"content", "headers", "links", "encoding", "variables", "parameters",
		"schemas", "requestBodies", "securitySchemes", "paths", "webhooks", "pathItems":
		return shapeNamed
	case "responses":
		return shapeResponses
	case "callbacks":
		return shapeCallbacks
	case "examples":
		return shapeExamples
	case "mapping":
		return shapeMapping
	case "example", "default", "enum", "const", "value", "security", "scopes", "required", "tags":
		return shapeLiteral
	}
	return shapeObject
}

// categoryShape is the shape of a component stored under category.
func categoryShape(c Category) shape {
	switch c {
	case CategoryResponses:
		return shapeResponse
	case CategoryCallbacks:
		return shapeCallback
	}
	return shapeObject
}

// walkRefs calls visit for every reference reachable inside n without
// following it: $ref fields of objects and discriminator mapping values.
// Literal subtrees are skipped.
func walkRefs(n *yaml.Node, s shape, loc string, visit func(ref, loc string)) {
	w := refWalker{seen: make(map[*yaml.Node]bool), visit: visit}
	w.walk(n, s, loc)
}

type refWalker struct {
	seen  map[*yaml.Node]bool
	visit func(ref, loc string)
}

func (w *refWalker) walk(n *yaml.Node, s shape, loc string) {
	n = document.Deref(n)
	if n == nil || s == shapeLiteral || w.seen[n] {
		return
	}
	w.seen[n] = true

	switch n.Kind {
	case yaml.SequenceNode:
		for i, item := range n.Content {
			w.walk(item, s.elem(true), loc+"["+strconv.Itoa(i)+"]")
		}
	case yaml.MappingNode:
		// A callback may itself be a reference object.
		if ref, ok := RefOf(n); ok && s == shapeCallback {
			w.visit(ref, joinLocation(loc, "$ref"))
			return
		}
		for key, value := range document.Pairs(n) {
			child := joinLocation(loc, key)
			switch {
			case s == shapeMapping:
				if value.Kind == yaml.ScalarNode {
					w.visit(mappingRef(value.Value), child)
				}
			case s.named():
				w.walk(value, s.elem(false), child)
			case key == "$ref":
				if value.Kind == yaml.ScalarNode {
					w.visit(value.Value, child)
				}
			default:
				w.walk(value, fieldShape(key), child)
			}
		}
	}
}

// mappingRef turns a discriminator mapping value into a reference. A value
// with neither a fragment nor a path separator is a bare schema name, dots
// included.
func mappingRef(v string) string {
	if strings.ContainsAny(v, "#/") {
		return v
	}
	return Ref{Category: CategorySchemas, Name: v}.String()
}

func joinLocation(loc, key string) string {
	if loc == "" {
		return key
	}
	return loc + "." + key
}
