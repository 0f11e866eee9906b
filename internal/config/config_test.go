package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "hotel-audits-mobile", cfg.Project)
	assert.Equal(t, "standard", cfg.Defaults.Tone)
	assert.Equal(t, "dev", cfg.Defaults.Audience)
	assert.Equal(t, []string{"architecture", "api", "onboarding"}, cfg.Defaults.DocTypes)
	assert.Equal(t, "json", cfg.Store.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "autodocs.yaml", `
project: inventory-service
store:
  backend: sqlite
defaults:
  tone: concise
  doc_types: [api]
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "inventory-service", cfg.Project)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, ".autodocs", cfg.Store.Dir)
	assert.Equal(t, "concise", cfg.Defaults.Tone)
	assert.Equal(t, "dev", cfg.Defaults.Audience)
	assert.Equal(t, []string{"api"}, cfg.Defaults.DocTypes)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	path := writeFile(t, t.TempDir(), "bad.yaml", "store: [not, a, map")
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvProject, "from-env")
	t.Setenv(EnvStore, "memory")
	t.Setenv(EnvTone, "detailed")
	t.Setenv(EnvMetricsAddr, ":9090")
	t.Setenv(EnvLogLevel, "  ")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "from-env", cfg.Project)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "detailed", cfg.Defaults.Tone)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "info", cfg.Log.Level, "blank values do not override")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Tone = "shouty"
	cfg.Defaults.Sources = []string{"code", "slack"}
	cfg.Store.Backend = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "defaults.tone")
	assert.ErrorContains(t, err, "defaults.sources")
	assert.ErrorContains(t, err, "store.backend")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registered so t.Setenv restores whatever godotenv sets.
	t.Setenv(EnvStoreDir, "")
	os.Unsetenv(EnvStoreDir)

	writeFile(t, dir, DefaultFile, "project: from-file\n")
	writeFile(t, dir, ".env", EnvStoreDir+"=/tmp/autodocs-env\n")
	t.Setenv(EnvProject, "")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Project, "blank env keeps file value")
	assert.Equal(t, "/tmp/autodocs-env", cfg.Store.Dir, ".env feeds overrides")
}

func TestResolve_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default().Project, cfg.Project)
}

func TestResolve_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvAudience, "aliens")
	_, err := Resolve("")
	assert.ErrorContains(t, err, "defaults.audience")
}

func TestBuildInput_Defaults(t *testing.T) {
	in, err := Default().BuildInput(Request{})
	require.NoError(t, err)
	assert.Equal(t, "hotel-audits-mobile", in.ProjectID)
	assert.Equal(t, []string{"code", "commits"}, in.SelectedSources)
	assert.Equal(t, []string{"architecture", "api", "onboarding"}, in.DocTypes)
	assert.Equal(t, "standard", string(in.Tone))
	assert.Equal(t, "dev", string(in.Audience))
	assert.Empty(t, in.SelectedCommitIDs)
}

func TestBuildInput_Overrides(t *testing.T) {
	in, err := Default().BuildInput(Request{
		Project:   "p",
		Sources:   []string{"PRS"},
		CommitIDs: []string{"a1b2c3d"},
		DocTypes:  []string{"api", "changelog"},
		Tone:      "Concise",
		Audience:  "ops",
	})
	require.NoError(t, err)
	assert.Equal(t, "p", in.ProjectID)
	assert.Equal(t, []string{"prs"}, in.SelectedSources)
	assert.Equal(t, []string{"a1b2c3d"}, in.SelectedCommitIDs)
	assert.Equal(t, []string{"api", "changelog"}, in.DocTypes, "doc types are not validated here")
	assert.Equal(t, "concise", string(in.Tone))
	assert.Equal(t, "ops", string(in.Audience))
}

func TestBuildInput_Invalid(t *testing.T) {
	cfg := Default()
	_, err := cfg.BuildInput(Request{Tone: "loud"})
	assert.ErrorContains(t, err, "invalid tone")
	_, err = cfg.BuildInput(Request{Audience: "aliens"})
	assert.ErrorContains(t, err, "invalid audience")
	_, err = cfg.BuildInput(Request{Sources: []string{"jira"}})
	assert.ErrorContains(t, err, "invalid source")
}
