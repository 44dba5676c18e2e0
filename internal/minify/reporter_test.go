package minify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineCountIgnoresSourceStyle(t *testing.T) {
	block := parseDoc(t, "a: 1\nb:\n  - x\n")
	flow := parseDoc(t, `{a: 1, b: [x]}`)

	assert.Equal(t, 3, LineCount(block))
	assert.Equal(t, LineCount(block), LineCount(flow))
	assert.Equal(t, 0, LineCount(nil))
}

func TestMeasure(t *testing.T) {
	original := parseDoc(t, "a: 1\nb: 2\nc: 3\nd: 4\n")
	minimal := parseDoc(t, "a: 1\n")

	r := Measure(original, minimal)
	assert.Equal(t, 4, r.OriginalSize)
	assert.Equal(t, 1, r.MinifiedSize)
	assert.InDelta(t, 75.0, r.ReductionPercentage, 0.001)

	assert.Equal(t, SizeReport{}, Measure(nil, nil))
}
