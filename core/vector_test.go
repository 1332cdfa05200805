package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
		assert.True(t, IsUnitVector(v, 1e-6))
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{2, 0}
		NormalizeVector(in)
		assert.Equal(t, float32(2), in[0])
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, DotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, DotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, DotProduct([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// Mismatched lengths use the shorter vector.
	assert.InDelta(t, 0.5, DotProduct([]float32{0.5}, []float32{1, 1}), 1e-6)
}

func TestIsUnitVector(t *testing.T) {
	assert.True(t, IsUnitVector([]float32{1, 0, 0}, 1e-6))
	assert.False(t, IsUnitVector([]float32{1, 1, 0}, 1e-6))
	assert.False(t, IsUnitVector(nil, 1e-6))

	// Within tolerance.
	almost := float32(1 / math.Sqrt2)
	assert.True(t, IsUnitVector([]float32{almost, almost}, 1e-3))
}
