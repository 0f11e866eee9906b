package store

import (
	"context"
	"sync"

	"github.com/dejo1307/autodocs/internal/docs"
)

// Memory is an in-process Store. Documents are cloned on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	docs []docs.GeneratedDoc
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) GetDocs(_ context.Context) ([]docs.GeneratedDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]docs.GeneratedDoc, len(s.docs))
	for i, d := range s.docs {
		result[i] = d.Clone()
	}
	return result, nil
}

func (s *Memory) SaveDoc(_ context.Context, doc docs.GeneratedDoc) error {
	doc = doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.docs, doc.ID); i >= 0 {
		s.docs[i] = doc
		return nil
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *Memory) DeleteDoc(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.docs, id); i >= 0 {
		s.docs = append(s.docs[:i], s.docs[i+1:]...)
	}
	return nil
}

func (s *Memory) GetDocByID(_ context.Context, id string) (*docs.GeneratedDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.docs, id); i >= 0 {
		d := s.docs[i].Clone()
		return &d, nil
	}
	return nil, nil
}

func (s *Memory) GetLatestDocByType(_ context.Context, t docs.DocType) (*docs.GeneratedDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := latestByType(s.docs, t)
	if latest == nil {
		return nil, nil
	}
	d := latest.Clone()
	return &d, nil
}

func (s *Memory) Close() error { return nil }
