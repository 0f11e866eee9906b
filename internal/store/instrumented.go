package store

import (
	"context"

	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/metrics"
)

type instrumented struct {
	next    Store
	backend string
	m       *metrics.Metrics
}

// Instrument wraps s so each operation is counted under backend.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	return &instrumented{next: s, backend: backend, m: m}
}

func (s *instrumented) GetDocs(ctx context.Context) ([]docs.GeneratedDoc, error) {
	all, err := s.next.GetDocs(ctx)
	s.m.RecordStoreOp(s.backend, "get_docs", err)
	return all, err
}

func (s *instrumented) SaveDoc(ctx context.Context, doc docs.GeneratedDoc) error {
	err := s.next.SaveDoc(ctx, doc)
	s.m.RecordStoreOp(s.backend, "save", err)
	return err
}

func (s *instrumented) DeleteDoc(ctx context.Context, id string) error {
	err := s.next.DeleteDoc(ctx, id)
	s.m.RecordStoreOp(s.backend, "delete", err)
	return err
}

func (s *instrumented) GetDocByID(ctx context.Context, id string) (*docs.GeneratedDoc, error) {
	d, err := s.next.GetDocByID(ctx, id)
	s.m.RecordStoreOp(s.backend, "get_by_id", err)
	return d, err
}

func (s *instrumented) GetLatestDocByType(ctx context.Context, t docs.DocType) (*docs.GeneratedDoc, error) {
	d, err := s.next.GetLatestDocByType(ctx, t)
	s.m.RecordStoreOp(s.backend, "get_latest", err)
	return d, err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
