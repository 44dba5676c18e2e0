package minify

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/document"
)

// SizeReport compares the serialized size of two documents.
type SizeReport struct {
	OriginalSize        int     `json:"originalSize"`
	MinifiedSize        int     `json:"minifiedSize"`
	ReductionPercentage float64 `json:"reductionPercentage"`
}

// Measure counts the YAML lines of both documents. The reduction is 0 when
// the original is empty.
func Measure(original, minimal *yaml.Node) SizeReport {
	r := SizeReport{
		OriginalSize: LineCount(original),
		MinifiedSize: LineCount(minimal),
	}
	if r.OriginalSize > 0 {
		r.ReductionPercentage = float64(r.OriginalSize-r.MinifiedSize) / float64(r.OriginalSize) * 100
	}
	return r
}

// LineCount returns the number of lines of n serialized as block YAML with a
// two-space indent, whatever style the source used. A nil node counts as zero lines.
func LineCount(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document.Block(n)); err != nil {
		return 0
	}
	if err := enc.Close(); err != nil {
		return 0
	}
	return bytes.Count(buf.Bytes(), []byte("\n"))
}
