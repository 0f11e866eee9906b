// Package store persists generated documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/metrics"
)

// Collection is the name of the single document collection.
const Collection = "ai_docs_auto_builder_docs"

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrNotFound is returned by callers that require a document to exist.
// Store lookups themselves report absence as a nil document.
var ErrNotFound = errors.New("document not found")

// Store is the persistence contract for generated documents. Records are
// returned in insertion order; saving an existing id replaces the record
// in place.
type Store interface {
	GetDocs(ctx context.Context) ([]docs.GeneratedDoc, error)
	SaveDoc(ctx context.Context, doc docs.GeneratedDoc) error
	DeleteDoc(ctx context.Context, id string) error
	GetDocByID(ctx context.Context, id string) (*docs.GeneratedDoc, error)
	GetLatestDocByType(ctx context.Context, t docs.DocType) (*docs.GeneratedDoc, error)
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Backend string
	Dir     string
}

// Open creates the backend named by cfg.Backend. An empty backend means json.
// When m is non-nil every operation is counted.
func Open(cfg Config, log zerolog.Logger, m *metrics.Metrics) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendJSON
	}

	var (
		s   Store
		err error
	)
	switch backend {
	case BackendMemory:
		s = NewMemory()
	case BackendJSON:
		s, err = NewJSONFile(filepath.Join(cfg.Dir, Collection+".json"))
	case BackendSQLite:
		s, err = NewSQLite(SQLiteConfig{Path: filepath.Join(cfg.Dir, "autodocs.db"), Logger: log})
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory, json or sqlite)", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", backend, err)
	}

	log.Debug().Str("backend", backend).Str("dir", cfg.Dir).Msg("store opened")
	if m == nil {
		return s, nil
	}
	return Instrument(s, backend, m), nil
}

// latestByType returns the record of type t with the latest CreatedAt.
// Ties go to the record inserted last.
func latestByType(all []docs.GeneratedDoc, t docs.DocType) *docs.GeneratedDoc {
	var latest *docs.GeneratedDoc
	for i := range all {
		d := all[i]
		if d.Type != t {
			continue
		}
		if latest == nil || !d.CreatedAt.Before(latest.CreatedAt) {
			latest = &d
		}
	}
	return latest
}

func indexOf(all []docs.GeneratedDoc, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
