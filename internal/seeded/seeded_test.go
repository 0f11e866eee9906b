package seeded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(src Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = src.Next()
	}
	return out
}

func TestGenerator_SameSeedSameSequence(t *testing.T) {
	a := draw(New("37eed081"), 64)
	b := draw(New("37eed081"), 64)
	assert.Equal(t, a, b)
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	a := draw(New("37eed081"), 16)
	b := draw(New("21e7185"), 16)
	assert.NotEqual(t, a, b)
}

func TestGenerator_Range(t *testing.T) {
	g := New("range")
	for i := 0; i < 10000; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
	assert.Equal(t, 10000, g.Draws())
}

func TestGenerator_Distribution(t *testing.T) {
	g := New("distribution")
	const n = 20000
	above := 0
	for i := 0; i < n; i++ {
		if g.Next() > 0.9 {
			above++
		}
	}
	// roughly 10% of draws should clear 0.9
	ratio := float64(above) / n
	assert.InDelta(t, 0.1, ratio, 0.02)
}

func TestSequence(t *testing.T) {
	s := NewSequence(0.1, 0.95, 0.5)
	assert.Equal(t, []float64{0.1, 0.95, 0.5, 0.5}, draw(s, 4))
	assert.Equal(t, 3, s.Consumed())

	assert.Equal(t, 0.0, NewSequence().Next())
}
