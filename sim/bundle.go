package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorConfig is the YAML form of an EngineConfig.
// Nil pointer fields mean "not set in YAML" and fall back to NewEngineConfig defaults.
type GeneratorConfig struct {
	PoolSize                int       `yaml:"pool_size"`
	HistorySize             int       `yaml:"history_size"`
	Selection               string    `yaml:"selection"`
	SoftnessExponent        *float64  `yaml:"softness_exponent"`
	AsymmetricNormalization *bool     `yaml:"asymmetric_normalization"`
	CandidateUpdates        string    `yaml:"candidate_updates"`
	Species                 []Species `yaml:"species"`
}

// ValidSelectionPolicies is the set of recognized selection policy names.
// Shared by Validate() and NewSelectionPolicy() to avoid duplication.
var ValidSelectionPolicies = map[string]bool{"": true, SelectionDrawScan: true, SelectionThreshold: true}

// ValidCandidateUpdates is the set of recognized candidate update modes.
var ValidCandidateUpdates = map[string]bool{"": true, CandidateUpdatesLive: true, CandidateUpdatesStale: true}

// LoadGeneratorConfig reads a YAML generator configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator config: %w", err)
	}
	return ParseGeneratorConfig(data)
}

// ParseGeneratorConfig decodes a YAML generator configuration.
func ParseGeneratorConfig(data []byte) (*GeneratorConfig, error) {
	var cfg GeneratorConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing generator config: %w", err)
	}
	return &cfg, nil
}

// EngineConfig resolves unset fields to defaults. Zero sizes become the
// package defaults; the result still needs Validate.
func (g *GeneratorConfig) EngineConfig() EngineConfig {
	poolSize, historySize := g.PoolSize, g.HistorySize
	if poolSize == 0 {
		poolSize = DefaultPoolSize
	}
	if historySize == 0 {
		historySize = DefaultHistorySize
	}
	cfg := NewEngineConfig(poolSize, historySize, append([]Species(nil), g.Species...))
	if g.Selection != "" {
		cfg.Selection = g.Selection
	}
	if g.SoftnessExponent != nil {
		cfg.SoftnessExponent = *g.SoftnessExponent
	}
	if g.AsymmetricNormalization != nil {
		cfg.AsymmetricNormalization = *g.AsymmetricNormalization
	}
	if g.CandidateUpdates != "" {
		cfg.CandidateUpdates = g.CandidateUpdates
	}
	return cfg
}

// Validate checks names and parameter ranges in the file form.
func (g *GeneratorConfig) Validate() error {
	if g.PoolSize < 0 {
		return fmt.Errorf("pool_size must be non-negative, got %d", g.PoolSize)
	}
	if g.HistorySize < 0 {
		return fmt.Errorf("history_size must be non-negative, got %d", g.HistorySize)
	}
	if g.SoftnessExponent != nil && (*g.SoftnessExponent < 0 || *g.SoftnessExponent > 1) {
		return fmt.Errorf("softness_exponent must be in [0,1], got %f", *g.SoftnessExponent)
	}
	return g.EngineConfig().Validate()
}
