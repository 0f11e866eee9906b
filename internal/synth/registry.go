package synth

import (
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/seeded"
)

// Synthesizer produces the content payload for one document type.
type Synthesizer interface {
	// Type returns the document type this synthesizer handles.
	Type() docs.DocType
	// Title returns the display title of documents it produces.
	Title() string
	// Synthesize builds the payload, drawing from src in fixture order.
	Synthesize(input docs.GenerationInput, src seeded.Source, fx *fixtures.Set) docs.Content
}

// Registry holds registered synthesizers.
type Registry struct {
	synthesizers []Synthesizer
}

// NewRegistry creates a new synthesizer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a registry with the architecture, api and
// onboarding synthesizers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewArchitecture())
	r.Register(NewAPI())
	r.Register(NewOnboarding())
	return r
}

// Register adds a synthesizer, replacing any previous one for the same type.
func (r *Registry) Register(s Synthesizer) {
	for i, existing := range r.synthesizers {
		if existing.Type() == s.Type() {
			r.synthesizers[i] = s
			return
		}
	}
	r.synthesizers = append(r.synthesizers, s)
}

// Get returns the synthesizer for the given type, or nil if not found.
func (r *Registry) Get(t docs.DocType) Synthesizer {
	for _, s := range r.synthesizers {
		if s.Type() == t {
			return s
		}
	}
	return nil
}

// All returns all registered synthesizers.
func (r *Registry) All() []Synthesizer {
	return r.synthesizers
}
