// Package engine orchestrates document generation: fingerprint the input,
// seed one generator, run the synthesizers in the requested order and stamp
// the resulting records.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/fingerprint"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/metrics"
	"github.com/dejo1307/autodocs/internal/seeded"
	"github.com/dejo1307/autodocs/internal/store"
	"github.com/dejo1307/autodocs/internal/synth"
)

// ErrNoStore is returned by GenerateAndSave when the engine has no store.
var ErrNoStore = errors.New("engine has no document store")

// Engine runs generation requests against a fixture set.
type Engine struct {
	mu        sync.Mutex
	synths    *synth.Registry
	fixtures  *fixtures.Set
	store     store.Store
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	version   func() string
	newSource func(seed string) seeded.Source
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default synthesizer registry.
func WithRegistry(r *synth.Registry) Option {
	return func(e *Engine) { e.synths = r }
}

// WithStore sets the store GenerateAndSave writes to.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l.With().Str("component", "engine").Logger() }
}

// WithMetrics enables generation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock sets the timestamp source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithVersionTag sets the source of display version tags.
func WithVersionTag(fn func() string) Option {
	return func(e *Engine) { e.version = fn }
}

// WithSourceFactory replaces the seeded generator, e.g. with a scripted
// seeded.Sequence.
func WithSourceFactory(fn func(seed string) seeded.Source) Option {
	return func(e *Engine) { e.newSource = fn }
}

// New creates an Engine over fx with the default synthesizers.
func New(fx *fixtures.Set, opts ...Option) *Engine {
	e := &Engine{
		synths:   synth.NewDefaultRegistry(),
		fixtures: fx,
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		version:  RandomVersionTag,
		newSource: func(seed string) seeded.Source {
			return seeded.New(seed)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fixtures returns the fixture set the engine synthesizes from.
func (e *Engine) Fixtures() *fixtures.Set {
	return e.fixtures
}

// Store returns the configured store, or nil.
func (e *Engine) Store() store.Store {
	return e.store
}

// Generate produces one document per recognized entry of input.DocTypes, in
// that order. Unrecognized and repeated entries are skipped. All synthesizers
// share one generator, so reordering DocTypes changes which draws each
// document consumes.
func (e *Engine) Generate(ctx context.Context, input docs.GenerationInput) ([]docs.GeneratedDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log := e.log.With().Str("run_id", runID).Str("project", input.ProjectID).Logger()

	hash := fingerprint.Fingerprint(input)
	src := e.newSource(hash)
	createdAt := e.now()

	types := e.resolve(input.DocTypes)
	if skipped := len(input.DocTypes) - len(types); skipped > 0 {
		log.Debug().Int("skipped", skipped).Strs("doc_types", input.DocTypes).Msg("ignoring unrecognized or repeated doc types")
	}

	result := make([]docs.GeneratedDoc, 0, len(types))
	generated := make([]string, 0, len(types))
	for _, t := range types {
		s := e.synths.Get(t)
		result = append(result, docs.GeneratedDoc{
			ID:              fmt.Sprintf("doc-%s-%d", hash, len(result)),
			Title:           s.Title(),
			Type:            t,
			CreatedAt:       createdAt,
			VersionTag:      e.version(),
			SelectedSources: cloneStrings(input.SelectedSources),
			InputsHash:      hash,
			Content:         s.Synthesize(input, src, e.fixtures),
		})
		generated = append(generated, string(t))
	}

	duration := time.Since(start)
	e.metrics.RecordGeneration(generated, duration)
	ev := log.Info().
		Str("fingerprint", hash).
		Strs("generated", generated).
		Dur("duration", duration)
	if c, ok := src.(drawCounter); ok {
		ev = ev.Int("draws", c.Draws())
	}
	ev.Msg("documents generated")
	return result, nil
}

// drawCounter is implemented by sources that count consumed values.
type drawCounter interface {
	Draws() int
}

// GenerateAndSave generates documents and saves each one to the store.
func (e *Engine) GenerateAndSave(ctx context.Context, input docs.GenerationInput) ([]docs.GeneratedDoc, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	generated, err := e.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	for _, d := range generated {
		if err := e.store.SaveDoc(ctx, d); err != nil {
			return nil, fmt.Errorf("saving %s: %w", d.ID, err)
		}
	}
	e.log.Debug().Int("count", len(generated)).Msg("documents saved")
	return generated, nil
}

// Preview describes what Generate would produce without drawing anything.
type Preview struct {
	Fingerprint     string               `json:"fingerprint"`
	DocTypes        []docs.DocType       `json:"docTypes"`
	Titles          []string             `json:"titles"`
	SelectedCommits []fixtures.Commit    `json:"selectedCommits"`
	Input           docs.GenerationInput `json:"input"`
}

// Preview resolves the input the way Generate would.
func (e *Engine) Preview(input docs.GenerationInput) Preview {
	types := e.resolve(input.DocTypes)
	titles := make([]string, 0, len(types))
	for _, t := range types {
		titles = append(titles, e.synths.Get(t).Title())
	}
	commits := e.fixtures.CommitsByID(input.SelectedCommitIDs)
	if commits == nil {
		commits = []fixtures.Commit{}
	}
	return Preview{
		Fingerprint:     fingerprint.Fingerprint(input),
		DocTypes:        types,
		Titles:          titles,
		SelectedCommits: commits,
		Input:           input,
	}
}

// resolve maps doc type tokens to registered types, dropping unknown tokens
// and repeats while keeping the requested order.
func (e *Engine) resolve(tokens []string) []docs.DocType {
	types := make([]docs.DocType, 0, len(tokens))
	seen := make(map[docs.DocType]bool, len(tokens))
	for _, tok := range tokens {
		t, ok := docs.ParseDocType(tok)
		if !ok || seen[t] || e.synths.Get(t) == nil {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types
}

// RandomVersionTag returns a display tag of the form v0.<0-9>.<0-99>. It is
// not derived from the input and carries no ordering meaning.
func RandomVersionTag() string {
	return fmt.Sprintf("v0.%d.%d", rand.IntN(10), rand.IntN(100))
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
