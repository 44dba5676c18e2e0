package minify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosureGetUsers(t *testing.T) {
	doc := loadShop(t)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "getUsers"))
	require.Empty(t, diags)

	assert.Equal(t, []string{"Address", "Error", "User"}, closure.Names(CategorySchemas))
	assert.Equal(t, []string{"Limit", "TraceId"}, closure.Names(CategoryParameters))
	assert.Equal(t, []string{"Error"}, closure.Names(CategoryResponses))
	assert.Equal(t, []string{"apiKey"}, closure.Names(CategorySecuritySchemes), "global security is inherited")
	assert.False(t, closure.Has(CategorySchemas, "Product"))
	assert.False(t, closure.Has(CategorySchemas, "Unused"))
	assert.Equal(t, 7, closure.Len())
}

func TestClosureRequestBody(t *testing.T) {
	doc := loadShop(t)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "createUser"))
	require.Empty(t, diags)

	assert.True(t, closure.Has(CategoryRequestBodies, "NewUser"))
	assert.Equal(t, []string{"Address", "User"}, closure.Names(CategorySchemas))
}

func TestClosureSecurityOverride(t *testing.T) {
	doc := loadShop(t)

	closure, _ := ClosureOf(doc, selectOps(t, doc, "getProducts"))
	assert.Equal(t, []string{"oauth"}, closure.Names(CategorySecuritySchemes))

	closure, _ = ClosureOf(doc, selectOps(t, doc, "getOrder"))
	assert.Empty(t, closure.Names(CategorySecuritySchemes), "security: [] opts out")
}

func TestClosureCompleteness(t *testing.T) {
	doc := loadShop(t)
	r := NewResolver(doc)

	for _, op := range []string{"getUsers", "createUser", "getProducts", "getOrder"} {
		closure, _ := ClosureOf(doc, selectOps(t, doc, op))
		for _, key := range closure.Keys() {
			node, err := r.Lookup(Ref{Category: key.Category, Name: key.Name})
			require.NoError(t, err)
			walkRefs(node, categoryShape(key.Category), "", func(ref, _ string) {
				parsed, err := ParseRef(ref)
				require.NoError(t, err)
				assert.True(t, closure.Has(parsed.Category, parsed.Name), "%s: %s reaches %s", op, key, ref)
			})
		}
	}
}

func TestClosureSelfReferenceTerminates(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /tree:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Node'
components:
  schemas:
    Node:
      type: object
      properties:
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
        parent:
          $ref: '#/components/schemas/Node'
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /tree"))
	require.Empty(t, diags)
	assert.Equal(t, []string{"Node"}, closure.Names(CategorySchemas))
	assert.Equal(t, 1, closure.Len())
}

func TestClosureMutualRecursion(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
components:
  schemas:
    A:
      allOf:
        - $ref: '#/components/schemas/B'
    B:
      oneOf:
        - $ref: '#/components/schemas/A'
        - $ref: '#/components/schemas/C'
    C:
      type: object
      additionalProperties:
        $ref: '#/components/schemas/D'
    D:
      not:
        $ref: '#/components/schemas/E'
    E:
      anyOf:
        - type: string
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))
	require.Empty(t, diags)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, closure.Names(CategorySchemas))
}

func TestClosureBrokenReferenceReportedOnce(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Wrapper'
components:
  schemas:
    Wrapper:
      type: object
      properties:
        first:
          $ref: '#/components/schemas/Missing'
        second:
          $ref: '#/components/schemas/Missing'
        ok:
          $ref: '#/components/schemas/Fine'
    Fine:
      type: string
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))

	unresolved := diags.ByCode(CodeUnresolvedReference)
	require.Len(t, unresolved, 1)
	assert.Equal(t, SeverityError, unresolved[0].Severity)
	assert.Equal(t, "components.schemas.Wrapper.properties.first.$ref", unresolved[0].Location)
	assert.Equal(t, []string{"Fine", "Wrapper"}, closure.Names(CategorySchemas))
}

func TestClosureUnsupportedReference(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: 'https://example.com/schemas.yaml#/Pet'
        '404':
          description: missing
          content:
            application/json:
              schema:
                $ref: 'https://example.com/schemas.yaml#/Pet'
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))
	assert.Equal(t, 0, closure.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnsupportedReferenceKind, diags[0].Code)
}

func TestClosureIgnoresLiteralRefs(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  $ref:
                    type: string
              example:
                $ref: '#/components/schemas/NotAReference'
components:
  schemas:
    NotAReference:
      type: string
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))
	assert.Empty(t, diags)
	assert.Equal(t, 0, closure.Len())
}

func TestClosureDiscriminatorMapping(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /pets:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      discriminator:
        propertyName: kind
        mapping:
          cat: '#/components/schemas/Cat'
          dog: Dog
    Cat:
      type: object
    Dog:
      type: object
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /pets"))
	require.Empty(t, diags)
	assert.Equal(t, []string{"Cat", "Dog", "Pet"}, closure.Names(CategorySchemas))
}

func TestClosureDiscriminatorMappingDottedName(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /pets:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      discriminator:
        propertyName: kind
        mapping:
          cat: Pet.Cat
    Pet.Cat:
      type: object
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /pets"))
	require.Empty(t, diags)
	assert.Equal(t, []string{"Pet", "Pet.Cat"}, closure.Names(CategorySchemas))
}

func TestClosureSecuritySchemeNameWithPercent(t *testing.T) {
	doc := parseDoc(t, `
security:
  - key%41: []
paths:
  /a:
    get:
      responses:
        '204':
          description: empty
components:
  securitySchemes:
    key%41:
      type: apiKey
      in: header
      name: X-Key
    keyA:
      type: apiKey
      in: header
      name: X-Other
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))
	require.Empty(t, diags)
	assert.Equal(t, []string{"key%41"}, closure.Names(CategorySecuritySchemes))
}

func TestClosureAliasCycleWarns(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /a:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
components:
  schemas:
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/A'
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "GET /a"))
	assert.Equal(t, []string{"A", "B"}, closure.Names(CategorySchemas))
	assert.NotEmpty(t, diags.ByCode(CodeCircularReference))
	assert.False(t, diags.HasErrors())
}

func TestClosureHeadersAndCallbacks(t *testing.T) {
	doc := parseDoc(t, `
paths:
  /subscribe:
    post:
      responses:
        '201':
          description: ok
          headers:
            X-Rate:
              $ref: '#/components/headers/Rate'
      callbacks:
        onEvent:
          $ref: '#/components/callbacks/Event'
components:
  headers:
    Rate:
      schema:
        $ref: '#/components/schemas/Rate'
  callbacks:
    Event:
      '{$request.body#/url}':
        post:
          requestBody:
            content:
              application/json:
                schema:
                  $ref: '#/components/schemas/Event'
          responses:
            '200':
              description: ok
  schemas:
    Rate:
      type: integer
    Event:
      type: object
`)
	closure, diags := ClosureOf(doc, selectOps(t, doc, "POST /subscribe"))
	require.Empty(t, diags)
	assert.True(t, closure.Has(CategoryHeaders, "Rate"))
	assert.True(t, closure.Has(CategoryCallbacks, "Event"))
	assert.Equal(t, []string{"Event", "Rate"}, closure.Names(CategorySchemas))
}
