// Package fixtures holds the static repository data the synthesizers
// decorate: commits, pull requests, API endpoints, architecture modules,
// the repository tree and an opaque diagram. Fixtures are read-only.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed data/*.json
var embedded embed.FS

// File names shared by the embedded set and fixture directories.
const (
	CommitsFile  = "commits.json"
	EndpointFile = "apis.json"
	ModulesFile  = "modules.json"
	DiagramFile  = "diagram.json"
	PRsFile      = "prs.json"
	RepoTreeFile = "repoTree.json"
)

// Commit is a commit record.
type Commit struct {
	ID           string   `json:"id"`
	Message      string   `json:"message"`
	Author       string   `json:"author"`
	Timestamp    string   `json:"timestamp"`
	TouchedAreas []string `json:"touchedAreas"`
}

// PullRequest is a pull request record.
type PullRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
}

// Endpoint is an API endpoint record. Params and Response are opaque.
type Endpoint struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Auth     bool            `json:"auth"`
	Params   json.RawMessage `json:"params,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Module is an architecture module record.
type Module struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

// TreeNode is a node of the repository tree.
type TreeNode struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"` // "folder" or "file"
	Children []TreeNode `json:"children,omitempty"`
}

// Set is a complete fixture collection.
type Set struct {
	Commits      []Commit        `json:"commits"`
	PullRequests []PullRequest   `json:"pullRequests"`
	Endpoints    []Endpoint      `json:"endpoints"`
	Modules      []Module        `json:"modules"`
	RepoTree     TreeNode        `json:"repoTree"`
	Diagram      json.RawMessage `json:"diagram"`
}

// Default returns the embedded fixture set.
func Default() (*Set, error) {
	return load(func(name string) ([]byte, error) {
		return embedded.ReadFile("data/" + name)
	})
}

// MustDefault is Default for callers that treat the embedded set as always valid.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads fixtures from dir. Any file missing from dir is taken from the
// embedded set. An empty dir is the same as Default.
func Load(dir string) (*Set, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures dir %s: not a directory", dir)
	}

	return load(func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return embedded.ReadFile("data/" + name)
		}
		return data, err
	})
}

func load(read func(name string) ([]byte, error)) (*Set, error) {
	s := &Set{}
	targets := []struct {
		name string
		dst  any
	}{
		{CommitsFile, &s.Commits},
		{PRsFile, &s.PullRequests},
		{EndpointFile, &s.Endpoints},
		{ModulesFile, &s.Modules},
		{RepoTreeFile, &s.RepoTree},
	}
	for _, t := range targets {
		data, err := read(t.name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.name, err)
		}
		if err := json.Unmarshal(data, t.dst); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", t.name, err)
		}
	}

	diagram, err := read(DiagramFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", DiagramFile, err)
	}
	if s.Diagram, err = compact(diagram); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", DiagramFile, err)
	}

	// Opaque values are kept in the form json.Marshal writes them, so
	// stored documents read back byte-identical.
	for i := range s.Endpoints {
		e := &s.Endpoints[i]
		if e.Params, err = compact(e.Params); err != nil {
			return nil, fmt.Errorf("parsing %s: %s params: %w", EndpointFile, e.Path, err)
		}
		if e.Response, err = compact(e.Response); err != nil {
			return nil, fmt.Errorf("parsing %s: %s response: %w", EndpointFile, e.Path, err)
		}
	}

	return s, nil
}

// compact rewrites raw exactly as json.Marshal writes a RawMessage:
// whitespace removed and <, > and & escaped.
func compact(raw []byte) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}
	out, err := json.Marshal(json.RawMessage(raw))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

// CommitsByID returns the commits whose ids are in ids, in fixture order.
func (s *Set) CommitsByID(ids []string) []Commit {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []Commit
	for _, c := range s.Commits {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CountFiles returns the number of file nodes under n.
func (n TreeNode) CountFiles() int {
	if n.Type == "file" {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.CountFiles()
	}
	return total
}
