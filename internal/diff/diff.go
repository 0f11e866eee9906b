// Package diff compares two generated documents and reports structural deltas.
package diff

import (
	"github.com/dejo1307/autodocs/internal/docs"
)

// Notable change messages.
const (
	InitialGeneration = "Initial generation"
	UpdatedSourceData = "Updated based on new source data"
	AddedDataSources  = "Added more data sources for analysis"
)

// Result describes what changed between two versions of a document.
// All slices are non-nil; an empty Result means no detected change.
type Result struct {
	AddedEndpoints   []string `json:"addedEndpoints"`
	RemovedEndpoints []string `json:"removedEndpoints"`
	NewModules       []string `json:"newModules"`
	NotableChanges   []string `json:"notableChanges"`
}

// HasChanges reports whether any delta was detected.
func (r Result) HasChanges() bool {
	return len(r.AddedEndpoints) > 0 ||
		len(r.RemovedEndpoints) > 0 ||
		len(r.NewModules) > 0 ||
		len(r.NotableChanges) > 0
}

func newResult() Result {
	return Result{
		AddedEndpoints:   []string{},
		RemovedEndpoints: []string{},
		NewModules:       []string{},
		NotableChanges:   []string{},
	}
}

// Compute diffs current against previous. A nil previous is the first
// version of a document. Type-specific deltas only apply when both documents
// share the type; the notable-change rules apply regardless and accumulate
// with them.
func Compute(previous *docs.GeneratedDoc, current docs.GeneratedDoc) Result {
	res := newResult()
	if previous == nil {
		res.NotableChanges = append(res.NotableChanges, InitialGeneration)
		return res
	}

	if prevAPI, curAPI := previous.API(), current.API(); prevAPI != nil && curAPI != nil &&
		previous.Type == docs.TypeAPI && current.Type == docs.TypeAPI {
		prevPaths := endpointPaths(prevAPI)
		curPaths := endpointPaths(curAPI)
		res.AddedEndpoints = missingFrom(curPaths, prevPaths)
		res.RemovedEndpoints = missingFrom(prevPaths, curPaths)
	}

	if prevArch, curArch := previous.Architecture(), current.Architecture(); prevArch != nil && curArch != nil &&
		previous.Type == docs.TypeArchitecture && current.Type == docs.TypeArchitecture {
		res.NewModules = missingFrom(componentNames(curArch), componentNames(prevArch))
	}

	if previous.InputsHash != current.InputsHash {
		res.NotableChanges = append(res.NotableChanges, UpdatedSourceData)
		if len(current.SelectedSources) > len(previous.SelectedSources) {
			res.NotableChanges = append(res.NotableChanges, AddedDataSources)
		}
	}

	return res
}

// Previous picks the version of current that precedes it: same type,
// different id, strictly earlier CreatedAt, latest of those. Returns nil
// when current is the first of its type.
func Previous(all []docs.GeneratedDoc, current docs.GeneratedDoc) *docs.GeneratedDoc {
	var best *docs.GeneratedDoc
	for i := range all {
		d := &all[i]
		if d.Type != current.Type || d.ID == current.ID {
			continue
		}
		if !d.CreatedAt.Before(current.CreatedAt) {
			continue
		}
		if best == nil || d.CreatedAt.After(best.CreatedAt) {
			best = d
		}
	}
	if best == nil {
		return nil
	}
	prev := *best
	return &prev
}

func endpointPaths(c *docs.APIContent) []string {
	paths := make([]string, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		paths = append(paths, e.Path)
	}
	return paths
}

func componentNames(c *docs.ArchitectureContent) []string {
	names := make([]string, 0, len(c.Components))
	for _, m := range c.Components {
		names = append(names, m.Name)
	}
	return names
}

// missingFrom returns the entries of a not present in b, in a's order.
func missingFrom(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		seen[s] = true
	}
	out := []string{}
	for _, s := range a {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}
