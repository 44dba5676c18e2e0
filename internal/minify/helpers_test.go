package minify

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

func parseDoc(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return &n
}

func loadShop(t *testing.T) *yaml.Node {
	t.Helper()
	data, err := os.ReadFile("testdata/shop.yaml")
	require.NoError(t, err)
	return parseDoc(t, string(data))
}

func encode(t *testing.T, n *yaml.Node) string {
	t.Helper()
	out, err := yaml.Marshal(n)
	require.NoError(t, err)
	return string(out)
}

// at walks a chain of mapping keys from the document root.
func at(n *yaml.Node, keys ...string) *yaml.Node {
	n = document.Root(n)
	for _, k := range keys {
		n = document.Lookup(n, k)
	}
	return n
}

func selectOps(t *testing.T, doc *yaml.Node, requests ...string) []OperationRef {
	t.Helper()
	matches, diags := FindOperations(doc, requests)
	require.Empty(t, diags.Errors())
	ops := make([]OperationRef, len(matches))
	for i, m := range matches {
		ops[i] = m.Operation
	}
	return ops
}

func lenient() Options {
	return Options{IncludeDescriptions: true}
}
