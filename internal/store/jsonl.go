package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dejo1307/autodocs/internal/docs"
)

// WriteJSONL writes documents one per line.
func WriteJSONL(w io.Writer, all []docs.GeneratedDoc) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, d := range all {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding document %q: %w", d.ID, err)
		}
	}
	return nil
}

// ReadJSONL reads documents written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]docs.GeneratedDoc, error) {
	scanner := bufio.NewScanner(r)
	// Allow large lines
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	var result []docs.GeneratedDoc
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var d docs.GeneratedDoc
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		result = append(result, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	return result, nil
}
