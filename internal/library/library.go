// Package library is the read side of the document store: listing,
// searching, viewing with a recomputed diff, deleting and counting.
package library

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/autodocs/internal/diff"
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/metrics"
	"github.com/dejo1307/autodocs/internal/store"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = store.ErrNotFound

// TypeAll matches every document type in a Filter.
const TypeAll = "all"

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Type   string // "all" or a doc type
	Search string // case-insensitive title substring
}

// View is a document together with the version it is compared against.
type View struct {
	Doc      docs.GeneratedDoc  `json:"doc"`
	Previous *docs.GeneratedDoc `json:"previous,omitempty"`
	Diff     diff.Result        `json:"diff"`
}

// Stats counts stored documents.
type Stats struct {
	Total  int                  `json:"total"`
	ByType map[docs.DocType]int `json:"byType"`
}

// Library wraps a store.
type Library struct {
	store   store.Store
	metrics *metrics.Metrics
}

// New creates a Library over s. m may be nil.
func New(s store.Store, m *metrics.Metrics) *Library {
	return &Library{store: s, metrics: m}
}

// List returns the documents matching f, newest first.
func (l *Library) List(ctx context.Context, f Filter) ([]docs.GeneratedDoc, error) {
	all, err := l.store.GetDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	typ := strings.ToLower(strings.TrimSpace(f.Type))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	result := make([]docs.GeneratedDoc, 0, len(all))
	for _, d := range all {
		if typ != "" && typ != TypeAll && string(d.Type) != typ {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) {
			continue
		}
		result = append(result, d)
	}
	sortNewestFirst(result)
	return result, nil
}

// Recent returns the n newest documents.
func (l *Library) Recent(ctx context.Context, n int) ([]docs.GeneratedDoc, error) {
	all, err := l.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Get returns the document with the given id.
func (l *Library) Get(ctx context.Context, id string) (*docs.GeneratedDoc, error) {
	d, err := l.store.GetDocByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return d, nil
}

// View loads a document, finds the preceding version of the same type and
// diffs the two. The diff is recomputed on every call.
func (l *Library) View(ctx context.Context, id string) (*View, error) {
	d, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := l.store.GetDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	prev := diff.Previous(all, *d)
	res := diff.Compute(prev, *d)
	l.metrics.RecordDiff()

	return &View{Doc: *d, Previous: prev, Diff: res}, nil
}

// Compare diffs two stored documents by id. An empty previousID compares
// against nothing.
func (l *Library) Compare(ctx context.Context, previousID, currentID string) (diff.Result, error) {
	cur, err := l.Get(ctx, currentID)
	if err != nil {
		return diff.Result{}, err
	}
	var prev *docs.GeneratedDoc
	if previousID != "" {
		if prev, err = l.Get(ctx, previousID); err != nil {
			return diff.Result{}, err
		}
	}
	l.metrics.RecordDiff()
	return diff.Compute(prev, *cur), nil
}

// Delete removes a document. Deleting a missing id is not an error.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.store.DeleteDoc(ctx, id); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

// Clear removes every document and returns how many were removed.
func (l *Library) Clear(ctx context.Context) (int, error) {
	all, err := l.store.GetDocs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}
	for i, d := range all {
		if err := l.store.DeleteDoc(ctx, d.ID); err != nil {
			return i, fmt.Errorf("deleting %s: %w", d.ID, err)
		}
	}
	return len(all), nil
}

// Stats counts documents per type.
func (l *Library) Stats(ctx context.Context) (Stats, error) {
	all, err := l.store.GetDocs(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("listing documents: %w", err)
	}
	s := Stats{Total: len(all), ByType: make(map[docs.DocType]int, len(docs.AllTypes))}
	for _, t := range docs.AllTypes {
		s.ByType[t] = 0
	}
	for _, d := range all {
		s.ByType[d.Type]++
	}
	return s, nil
}

// sortNewestFirst orders by CreatedAt descending; equal timestamps keep
// their relative order.
func sortNewestFirst(all []docs.GeneratedDoc) {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
}
