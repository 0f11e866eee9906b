package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dejo1307/autodocs/internal/docs"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "autodocs.yaml"

// Environment variables that override file values.
const (
	EnvProject     = "AUTODOCS_PROJECT"
	EnvStore       = "AUTODOCS_STORE"
	EnvStoreDir    = "AUTODOCS_STORE_DIR"
	EnvFixturesDir = "AUTODOCS_FIXTURES_DIR"
	EnvLogLevel    = "AUTODOCS_LOG_LEVEL"
	EnvMetricsAddr = "AUTODOCS_METRICS_ADDR"
	EnvTone        = "AUTODOCS_TONE"
	EnvAudience    = "AUTODOCS_AUDIENCE"
)

// Config represents the autodocs.yaml configuration.
type Config struct {
	Project     string         `yaml:"project"`
	FixturesDir string         `yaml:"fixtures_dir"`
	Defaults    DefaultsConfig `yaml:"defaults"`
	Store       StoreConfig    `yaml:"store"`
	Log         LogConfig      `yaml:"log"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// DefaultsConfig holds the generation choices used when a request leaves
// them out.
type DefaultsConfig struct {
	Tone     string   `yaml:"tone"`
	Audience string   `yaml:"audience"`
	Sources  []string `yaml:"sources"`
	DocTypes []string `yaml:"doc_types"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Project: "hotel-audits-mobile",
		Defaults: DefaultsConfig{
			Tone:     string(docs.ToneStandard),
			Audience: string(docs.AudienceDev),
			Sources:  []string{docs.SourceCode, docs.SourceCommits},
			DocTypes: []string{string(docs.TypeArchitecture), string(docs.TypeAPI), string(docs.TypeOnboarding)},
		},
		Store: StoreConfig{
			Backend: "json",
			Dir:     ".autodocs",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	def := Default()
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = def.Store.Backend
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = def.Store.Dir
	}
	if cfg.Defaults.Tone == "" {
		cfg.Defaults.Tone = def.Defaults.Tone
	}
	if cfg.Defaults.Audience == "" {
		cfg.Defaults.Audience = def.Defaults.Audience
	}

	return cfg, nil
}

// Resolve builds the effective configuration: .env is loaded into the
// environment if present, then the config file (path, or DefaultFile when
// path is empty and that file exists), then AUTODOCS_* overrides.
func Resolve(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case fileExists(DefaultFile):
		loaded, err := Load(DefaultFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from AUTODOCS_* environment variables.
func (c *Config) ApplyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	override(&c.Project, EnvProject)
	override(&c.Store.Backend, EnvStore)
	override(&c.Store.Dir, EnvStoreDir)
	override(&c.FixturesDir, EnvFixturesDir)
	override(&c.Log.Level, EnvLogLevel)
	override(&c.Metrics.Addr, EnvMetricsAddr)
	override(&c.Defaults.Tone, EnvTone)
	override(&c.Defaults.Audience, EnvAudience)
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := docs.ParseTone(c.Defaults.Tone); err != nil {
		errs = append(errs, fmt.Errorf("defaults.tone: %w", err))
	}
	if _, err := docs.ParseAudience(c.Defaults.Audience); err != nil {
		errs = append(errs, fmt.Errorf("defaults.audience: %w", err))
	}
	for _, s := range c.Defaults.Sources {
		if _, err := docs.ParseSource(s); err != nil {
			errs = append(errs, fmt.Errorf("defaults.sources: %w", err))
		}
	}
	if !slices.Contains([]string{"memory", "json", "sqlite"}, strings.ToLower(c.Store.Backend)) {
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	return errors.Join(errs...)
}

// Request holds the choices of one generation request. Empty fields fall
// back to the configured defaults.
type Request struct {
	Project   string
	Sources   []string
	CommitIDs []string
	DocTypes  []string
	Tone      string
	Audience  string
}

// BuildInput resolves r against the defaults. Tone, audience and sources
// are validated; doc type tokens pass through unchanged.
func (c *Config) BuildInput(r Request) (docs.GenerationInput, error) {
	project := r.Project
	if project == "" {
		project = c.Project
	}
	toneToken := r.Tone
	if toneToken == "" {
		toneToken = c.Defaults.Tone
	}
	tone, err := docs.ParseTone(toneToken)
	if err != nil {
		return docs.GenerationInput{}, err
	}
	audienceToken := r.Audience
	if audienceToken == "" {
		audienceToken = c.Defaults.Audience
	}
	audience, err := docs.ParseAudience(audienceToken)
	if err != nil {
		return docs.GenerationInput{}, err
	}

	rawSources := r.Sources
	if len(rawSources) == 0 {
		rawSources = c.Defaults.Sources
	}
	sources := make([]string, 0, len(rawSources))
	for _, s := range rawSources {
		src, err := docs.ParseSource(s)
		if err != nil {
			return docs.GenerationInput{}, err
		}
		sources = append(sources, src)
	}

	docTypes := r.DocTypes
	if len(docTypes) == 0 {
		docTypes = c.Defaults.DocTypes
	}

	commits := r.CommitIDs
	if commits == nil {
		commits = []string{}
	}

	return docs.GenerationInput{
		ProjectID:         project,
		SelectedSources:   sources,
		SelectedCommitIDs: slices.Clone(commits),
		DocTypes:          slices.Clone(docTypes),
		Tone:              tone,
		Audience:          audience,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

