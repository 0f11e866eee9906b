// Package render turns generated documents into exportable artifacts.
package render

import (
	"github.com/dejo1307/autodocs/internal/docs"
)

// Renderer produces an export artifact from a document.
type Renderer interface {
	// Name returns the format identifier (e.g. "markdown").
	Name() string
	// Extension returns the file extension of rendered output, with the dot.
	Extension() string
	// Render produces the artifact for doc.
	Render(doc docs.GeneratedDoc) ([]byte, error)
}

// Registry holds registered renderers.
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates a new renderer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a registry with the markdown and json renderers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewMarkdown())
	r.Register(NewJSON())
	return r
}

// Register adds a renderer to the registry.
func (r *Registry) Register(rnd Renderer) {
	r.renderers = append(r.renderers, rnd)
}

// Get returns the renderer with the given name, or nil if not found.
func (r *Registry) Get(name string) Renderer {
	for _, rnd := range r.renderers {
		if rnd.Name() == name {
			return rnd
		}
	}
	return nil
}

// Names returns the registered format names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for _, rnd := range r.renderers {
		names = append(names, rnd.Name())
	}
	return names
}
