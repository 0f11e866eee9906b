package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dejo1307/autodocs/internal/docs"
)

// JSONRenderer renders a document as indented JSON, the stored record shape.
type JSONRenderer struct{}

// NewJSON creates a JSONRenderer.
func NewJSON() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Name() string      { return "json" }
func (r *JSONRenderer) Extension() string { return ".json" }

func (r *JSONRenderer) Render(doc docs.GeneratedDoc) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", doc.ID, err)
	}
	return buf.Bytes(), nil
}
