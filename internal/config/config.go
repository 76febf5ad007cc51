// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/noahsarkproj/shopmanual/internal/fetch"
	"github.com/noahsarkproj/shopmanual/internal/scoring"
	"github.com/noahsarkproj/shopmanual/internal/targets"
)

const (
	DefaultOutputPath = "shop_manual.json"
	DefaultBatchSize  = 3
)

// Environment variables that override the config file.
const (
	EnvOutput    = "SHOPMANUAL_OUTPUT"
	EnvRemoteURL = "SHOPMANUAL_REMOTE_URL"
	EnvAPIKey    = "SHOPMANUAL_API_KEY"
)

type Config struct {
	OutputPath     string `yaml:"output_path"`
	TargetsFile    string `yaml:"targets_file"`
	BatchSize      int    `yaml:"batch_size"`
	FlushEachBatch bool   `yaml:"flush_each_batch"`

	Fetch   FetchConfig   `yaml:"fetch"`
	Scoring ScoringConfig `yaml:"scoring"`
	Parser  ParserConfig  `yaml:"parser"`
	Remote  RemoteConfig  `yaml:"remote"`

	Quantum []targets.QuantumCandidate `yaml:"quantum_candidates"`
}

type FetchConfig struct {
	PDBBaseURL      string `yaml:"pdb_base_url"`
	EMDBURLTemplate string `yaml:"emdb_url_template"`
	// Timeout is a Go duration string such as "30s".
	Timeout string `yaml:"timeout"`

	timeout time.Duration
}

// RequestTimeout returns the parsed request timeout.
func (f FetchConfig) RequestTimeout() time.Duration {
	return f.timeout
}

type ScoringConfig struct {
	// BaselineCategoryScore is the uniform value of every GEPS category.
	BaselineCategoryScore int `yaml:"baseline_category_score"`
	QuantumEvidence       int `yaml:"quantum_evidence"`
}

type ParserConfig struct {
	// CollectDiagnostics records dropped PDB lines instead of discarding them silently.
	CollectDiagnostics bool `yaml:"collect_diagnostics"`
}

type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	// The zero config always normalizes.
	_ = cfg.normalize()
	return cfg
}

// Load reads the YAML file at path, applies environment overrides and fills
// unset keys with defaults. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Remote.APIKey = v
	}
}

// normalize fills zero values with defaults and validates the result.
func (c *Config) normalize() error {
	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}
	switch {
	case c.BatchSize == 0:
		c.BatchSize = DefaultBatchSize
	case c.BatchSize < 0:
		return fmt.Errorf("invalid batch_size %d: must be positive", c.BatchSize)
	}
	if c.Fetch.PDBBaseURL == "" {
		c.Fetch.PDBBaseURL = fetch.DefaultPDBBaseURL
	}
	if c.Fetch.EMDBURLTemplate == "" {
		c.Fetch.EMDBURLTemplate = fetch.DefaultEMDBURLTemplate
	}
	if c.Fetch.Timeout == "" {
		c.Fetch.Timeout = fetch.DefaultTimeout.String()
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return fmt.Errorf("invalid fetch.timeout %q: %w", c.Fetch.Timeout, err)
	}
	c.Fetch.timeout = d
	if c.Scoring.BaselineCategoryScore == 0 {
		c.Scoring.BaselineCategoryScore = scoring.DefaultBaselineCategoryScore
	}
	if c.Scoring.QuantumEvidence == 0 {
		c.Scoring.QuantumEvidence = scoring.DefaultQuantumEvidence
	}
	if c.Quantum == nil {
		c.Quantum = targets.DefaultQuantumCandidates()
	}
	return nil
}

// FetchOptions returns the fetch client options described by the config.
func (c *Config) FetchOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithPDBBaseURL(c.Fetch.PDBBaseURL),
		fetch.WithEMDBURLTemplate(c.Fetch.EMDBURLTemplate),
		fetch.WithTimeout(c.Fetch.RequestTimeout()),
	}
}
