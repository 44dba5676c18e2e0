package minify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

func build(t *testing.T, doc *yaml.Node, opts BuildOptions, requests ...string) *yaml.Node {
	t.Helper()
	ops := selectOps(t, doc, requests...)
	closure, _ := ClosureOf(doc, ops)
	return NewBuilder(opts).Build(doc, ops, closure)
}

func TestBuildPrunesPathsAndComponents(t *testing.T) {
	doc := loadShop(t)
	before := encode(t, doc)

	out := build(t, doc, BuildOptions{IncludeDescriptions: true}, "getUsers", "getProducts")

	assert.Equal(t, before, encode(t, doc), "original must not change")
	assert.Equal(t,
		[]string{"openapi", "info", "servers", "security", "tags", "paths", "components"},
		document.Keys(document.Root(out)))

	assert.Equal(t, []string{"/users", "/products"}, document.Keys(at(out, "paths")))
	assert.Equal(t, []string{"parameters", "get"}, document.Keys(at(out, "paths", "/users")), "post is pruned")
	assert.Equal(t, []string{"get"}, document.Keys(at(out, "paths", "/products")))

	assert.Equal(t,
		[]string{"parameters", "responses", "schemas", "securitySchemes"},
		document.Keys(at(out, "components")))
	assert.Equal(t,
		[]string{"User", "Address", "Product", "Category", "Error"},
		document.Keys(at(out, "components", "schemas")), "original order is kept")
	assert.Equal(t, []string{"apiKey", "oauth"}, document.Keys(at(out, "components", "securitySchemes")))

	var tags []string
	for _, tag := range document.Items(at(out, "tags")) {
		tags = append(tags, document.String(tag, "name"))
	}
	assert.Equal(t, []string{"users", "products"}, tags)

	assert.Equal(t, "Shop", document.String(at(out, "info"), "title"))
}

func TestBuildDropsUnusedGlobalSecurity(t *testing.T) {
	doc := loadShop(t)
	out := build(t, doc, BuildOptions{IncludeDescriptions: true}, "getOrder")

	root := document.Root(out)
	assert.False(t, document.Has(root, "security"))
	assert.Nil(t, at(out, "components", "securitySchemes"))
	assert.Equal(t, []string{"User", "Address", "Product", "Category", "Order"}, document.Keys(at(out, "components", "schemas")))
}

func TestBuildStripsDescriptions(t *testing.T) {
	doc := loadShop(t)
	out := build(t, doc, BuildOptions{}, "getUsers")

	op := at(out, "paths", "/users", "get")
	assert.False(t, document.Has(op, "description"))
	assert.Equal(t, "List users", document.String(op, "summary"))
	assert.Equal(t, "The users", document.String(at(out, "paths", "/users", "get", "responses", "200"), "description"),
		"response descriptions are required")
	assert.Equal(t, "Error", document.String(at(out, "components", "responses", "Error"), "description"))

	user := at(out, "components", "schemas", "User")
	assert.False(t, document.Has(user, "description"))
	prop := document.Lookup(document.Lookup(user, "properties"), "description")
	require.NotNil(t, prop, "a property named description is not a description field")
	assert.Equal(t, "string", document.String(prop, "type"))
	assert.False(t, document.Has(prop, "description"))

	assert.False(t, document.Has(at(out, "components", "parameters", "Limit"), "description"))
}

func TestBuildExamples(t *testing.T) {
	doc := loadShop(t)
	media := func(out *yaml.Node) *yaml.Node {
		return at(out, "paths", "/users", "get", "responses", "200", "content", "application/json")
	}

	out := build(t, doc, BuildOptions{IncludeDescriptions: true}, "getUsers")
	assert.False(t, document.Has(media(out), "example"))
	assert.Equal(t, "Returns every user.", document.String(at(out, "paths", "/users", "get"), "description"))

	out = build(t, doc, BuildOptions{IncludeDescriptions: true, IncludeExamples: true}, "getUsers")
	assert.True(t, document.Has(media(out), "example"))
}

func TestBuildExampleComponents(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              examples:
                sample:
                  $ref: '#/components/examples/Sample'
components:
  examples:
    Sample:
      value:
        description: literal
`)
	out := build(t, doc, BuildOptions{}, "GET /a")
	assert.Nil(t, at(out, "components"))

	out = build(t, doc, BuildOptions{IncludeExamples: true}, "GET /a")
	sample := at(out, "components", "examples", "Sample", "value")
	require.NotNil(t, sample)
	assert.Equal(t, "literal", document.String(sample, "description"), "example values are copied as they are")
}

func TestBuildExpandsAliases(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200': &ok
          description: ok
  /b:
    get:
      responses:
        '200': *ok
`)
	out := build(t, doc, BuildOptions{IncludeDescriptions: true}, "GET /b")
	resp := at(out, "paths", "/b", "get", "responses", "200")
	require.NotNil(t, resp)
	assert.Equal(t, yaml.MappingNode, resp.Kind)
	assert.Equal(t, "ok", document.String(resp, "description"))
}
