package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dejo1307/autodocs/internal/docs"
)

// JSONFile keeps the whole collection as one JSON array in a file. Every
// operation re-reads the file so separate processes see each other's writes.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile creates a store backed by path. The parent directory is
// created if needed; the file itself is created on first save.
func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

func (s *JSONFile) GetDocs(_ context.Context) ([]docs.GeneratedDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONFile) SaveDoc(_ context.Context, doc docs.GeneratedDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	if i := indexOf(all, doc.ID); i >= 0 {
		all[i] = doc
	} else {
		all = append(all, doc)
	}
	return s.write(all)
}

func (s *JSONFile) DeleteDoc(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil
	}
	return s.write(append(all[:i], all[i+1:]...))
}

func (s *JSONFile) GetDocByID(_ context.Context, id string) (*docs.GeneratedDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, id); i >= 0 {
		return &all[i], nil
	}
	return nil, nil
}

func (s *JSONFile) GetLatestDocByType(_ context.Context, t docs.DocType) (*docs.GeneratedDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	return latestByType(all, t), nil
}

func (s *JSONFile) Close() error { return nil }

func (s *JSONFile) read() ([]docs.GeneratedDoc, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []docs.GeneratedDoc{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []docs.GeneratedDoc{}, nil
	}
	var all []docs.GeneratedDoc
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if all == nil {
		all = []docs.GeneratedDoc{}
	}
	return all, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *JSONFile) write(all []docs.GeneratedDoc) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), Collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
