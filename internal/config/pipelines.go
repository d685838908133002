// Package config reads the per-pipeline settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindMovies  Kind = "movies"
	KindGenres  Kind = "genres"
	KindPersons Kind = "persons"
)

const (
	defaultExtractorBatchSize = 100
	defaultLoaderBatchSize    = 1000
	defaultExtractBorder      = 10 * time.Second
	defaultEnrichBorder       = time.Second
	defaultLoadBorder         = time.Second
)

// BackoffConfig holds the give-up bound of each retried call.
type BackoffConfig struct {
	Extract time.Duration `yaml:"extract"`
	Enrich  time.Duration `yaml:"enrich"`
	Load    time.Duration `yaml:"load"`
}

type Pipeline struct {
	Name               string        `yaml:"name"`
	Kind               Kind          `yaml:"kind"`
	Index              string        `yaml:"index"`
	StatePrefix        string        `yaml:"state_prefix"`
	ExtractorBatchSize int           `yaml:"extractor_batch_size"`
	LoaderBatchSize    int           `yaml:"loader_batch_size"`
	Backoff            BackoffConfig `yaml:"backoff"`
	Enabled            *bool         `yaml:"enabled"`
}

func (p Pipeline) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

type Pipelines struct {
	Pipelines []Pipeline `yaml:"pipelines"`
}

// Default is one pipeline per entity kind, each writing to an index named after it.
func Default() *Pipelines {
	cfg := &Pipelines{
		Pipelines: []Pipeline{
			{Name: string(KindMovies), Kind: KindMovies},
			{Name: string(KindGenres), Kind: KindGenres},
			{Name: string(KindPersons), Kind: KindPersons},
		},
	}
	cfg.applyDefaults()
	return cfg
}

type YAMLLoader struct {
	reader io.Reader
}

func NewYAMLLoader(reader io.Reader) *YAMLLoader {
	return &YAMLLoader{
		reader: reader,
	}
}

func (l *YAMLLoader) Load(validate bool) (*Pipelines, error) {
	decoder := yaml.NewDecoder(l.reader)
	decoder.KnownFields(true)

	var cfg Pipelines
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperr.NewValidationWrap("invalid pipelines config", err)
	}
	cfg.applyDefaults()

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadFile reads and validates path. An empty path yields Default.
func LoadFile(path string) (*Pipelines, error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipelines config: %w", err)
	}
	defer file.Close()

	return NewYAMLLoader(file).Load(true)
}

func (c *Pipelines) applyDefaults() {
	for i := range c.Pipelines {
		p := &c.Pipelines[i]
		if p.Name == "" {
			p.Name = string(p.Kind)
		}
		if p.Index == "" {
			p.Index = p.Name
		}
		if p.StatePrefix == "" {
			p.StatePrefix = p.Name + "."
		}
		if p.ExtractorBatchSize == 0 {
			p.ExtractorBatchSize = defaultExtractorBatchSize
		}
		if p.LoaderBatchSize == 0 {
			p.LoaderBatchSize = defaultLoaderBatchSize
		}
		if p.Backoff.Extract == 0 {
			p.Backoff.Extract = defaultExtractBorder
		}
		if p.Backoff.Enrich == 0 {
			p.Backoff.Enrich = defaultEnrichBorder
		}
		if p.Backoff.Load == 0 {
			p.Backoff.Load = defaultLoadBorder
		}
	}
}

func (c *Pipelines) Validate() error {
	if len(c.Enabled()) == 0 {
		return apperr.NewValidation("at least one enabled pipeline is required")
	}

	names := map[string]bool{}
	prefixes := map[string]bool{}
	indexes := map[string]bool{}

	for i, p := range c.Pipelines {
		switch p.Kind {
		case KindMovies, KindGenres, KindPersons:
		default:
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: unknown kind %q", i, p.Kind))
		}
		if p.ExtractorBatchSize <= 0 || p.LoaderBatchSize <= 0 {
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: batch sizes must be positive", i))
		}
		if p.Backoff.Extract < 0 || p.Backoff.Enrich < 0 || p.Backoff.Load < 0 {
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: backoff bounds must be positive", i))
		}
		if names[p.Name] {
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: duplicate name %q", i, p.Name))
		}
		if prefixes[p.StatePrefix] {
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: duplicate state_prefix %q", i, p.StatePrefix))
		}
		if indexes[p.Index] {
			return apperr.NewValidation(fmt.Sprintf("pipelines[%d]: duplicate index %q", i, p.Index))
		}
		names[p.Name] = true
		prefixes[p.StatePrefix] = true
		indexes[p.Index] = true
	}
	return nil
}

func (c *Pipelines) Enabled() []Pipeline {
	var out []Pipeline
	for _, p := range c.Pipelines {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}
