// Package seeded provides the reproducible pseudo-random source that drives
// the stochastic annotations of generated documents.
package seeded

import (
	"hash/fnv"
	"math/rand/v2"
)

// Source yields floats in [0,1). Synthesizers draw from a Source so that a
// fixed sequence can stand in for the real generator in tests.
type Source interface {
	Next() float64
}

// Generator is a PCG-backed Source keyed by a seed string. The same seed
// yields the same sequence on every run and platform.
type Generator struct {
	rng   *rand.Rand
	draws int
}

// New creates a Generator for seed.
func New(seed string) *Generator {
	hi, lo := stateFromSeed(seed)
	return &Generator{
		rng: rand.New(rand.NewPCG(hi, lo)),
	}
}

// Next returns the next value of the sequence.
func (g *Generator) Next() float64 {
	g.draws++
	return g.rng.Float64()
}

// Draws returns how many values have been consumed.
func (g *Generator) Draws() int {
	return g.draws
}

// stateFromSeed derives the two PCG state words from the seed with FNV-1a;
// the second word hashes the seed with a trailing marker byte so the words differ.
func stateFromSeed(seed string) (uint64, uint64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	hi := h.Sum64()
	_, _ = h.Write([]byte{0xff})
	lo := h.Sum64()
	return hi, lo
}

// Sequence is a Source that replays fixed values and then repeats the last
// one. An empty Sequence yields zero.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence creates a Sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Next returns the next scripted value.
func (s *Sequence) Next() float64 {
	if len(s.values) == 0 {
		return 0
	}
	if s.pos >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Consumed returns how many scripted values have been drawn.
func (s *Sequence) Consumed() int {
	return s.pos
}
