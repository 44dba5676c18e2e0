package minify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Ref
		wantErr error
	}{
		{name: "schema", ref: "#/components/schemas/User", want: Ref{Category: CategorySchemas, Name: "User"}},
		{name: "security scheme", ref: "#/components/securitySchemes/apiKey", want: Ref{Category: CategorySecuritySchemes, Name: "apiKey"}},
		{name: "escaped slash", ref: "#/components/schemas/a~1b", want: Ref{Category: CategorySchemas, Name: "a/b"}},
		{name: "escaped tilde", ref: "#/components/schemas/a~0b", want: Ref{Category: CategorySchemas, Name: "a~b"}},
		{name: "percent encoded", ref: "#/components/schemas/a%20b", want: Ref{Category: CategorySchemas, Name: "a b"}},
		{name: "empty", ref: "", wantErr: ErrUnsupportedReference},
		{name: "remote", ref: "https://example.com/api.yaml#/components/schemas/User", wantErr: ErrUnsupportedReference},
		{name: "external file", ref: "common.yaml#/components/schemas/User", wantErr: ErrUnsupportedReference},
		{name: "not components", ref: "#/definitions/User", wantErr: ErrUnsupportedReference},
		{name: "unknown category", ref: "#/components/widgets/User", wantErr: ErrUnsupportedReference},
		{name: "nested pointer", ref: "#/components/schemas/User/properties/id", wantErr: ErrUnsupportedReference},
		{name: "missing name", ref: "#/components/schemas/", wantErr: ErrUnsupportedReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.ref)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.False(t, errors.Is(err, ErrUnresolvedReference))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefStringRoundTrip(t *testing.T) {
	r := Ref{Category: CategorySchemas, Name: "a/b~c"}
	assert.Equal(t, "#/components/schemas/a~1b~0c", r.String())

	parsed, err := ParseRef(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
	assert.Equal(t, "components.schemas.a/b~c", r.Location())
}

func TestRefStringEscapesPercent(t *testing.T) {
	r := Ref{Category: CategorySecuritySchemes, Name: "key%41"}
	assert.Equal(t, "#/components/securitySchemes/key%2541", r.String())

	parsed, err := ParseRef(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestResolverResolve(t *testing.T) {
	doc := loadShop(t)
	r := NewResolver(doc)

	node, ref, err := r.Resolve("#/components/schemas/Address")
	require.NoError(t, err)
	assert.Equal(t, "Address", ref.Name)
	assert.Equal(t, "object", node.Content[1].Value)

	_, _, err = r.Resolve("#/components/schemas/Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, CodeUnresolvedReference, refErr.Code)
}

func TestResolverDoesNotMutate(t *testing.T) {
	doc := loadShop(t)
	before := encode(t, doc)

	r := NewResolver(doc)
	_, _, _ = r.Resolve("#/components/schemas/User")
	_, _, _ = r.Resolve("#/components/schemas/Nope")

	assert.Equal(t, before, encode(t, doc))
}

func TestResolverFollow(t *testing.T) {
	doc := parseDoc(t, `
components:
  schemas:
    Alias:
      $ref: '#/components/schemas/Target'
    Target:
      type: string
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/A'
`)
	r := NewResolver(doc)

	node, err := r.Follow("#/components/schemas/Alias")
	require.NoError(t, err)
	assert.Equal(t, "string", node.Content[1].Value)

	_, err = r.Follow("#/components/schemas/A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircularReference))
}
