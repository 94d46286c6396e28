package sim

import (
	"fmt"
	"math"
)

// Candidate update modes: how registry edits reach candidates already in the pool.
const (
	CandidateUpdatesLive  = "live"  // edits propagate to pending slots immediately
	CandidateUpdatesStale = "stale" // pending slots keep the geometry they were drawn with
)

// Defaults shared by the CLI presets and the host adapters.
const (
	DefaultPoolSize         = 16
	DefaultHistorySize      = 16
	DefaultSoftnessExponent = 1.0
)

// DefaultSpecies returns the reference catalog: three identical rigid species of
// diameter 8 with equal abundance.
func DefaultSpecies() []Species {
	species := make([]Species, 3)
	for i := range species {
		species[i] = Species{Diameter: 8, Softness: 0, Abundance: 1}
	}
	return species
}

// EngineConfig groups everything NewEngine needs.
type EngineConfig struct {
	PoolSize    int       // pending candidates (must be > 0)
	HistorySize int       // history window capacity N (must be > 0)
	Species     []Species // initial catalog; ids are reassigned densely

	Selection        string  // "draw-scan" (default) or "threshold"
	SoftnessExponent float64 // clamped to [0,1]
	// AsymmetricNormalization normalizes both compression shares by the candidate's give.
	AsymmetricNormalization bool
	CandidateUpdates        string // "live" (default) or "stale"
}

// NewEngineConfig returns a config with reference defaults: draw-then-scan selection,
// asymmetric normalization, live candidate updates, softness exponent 1.
func NewEngineConfig(poolSize, historySize int, species []Species) EngineConfig {
	return EngineConfig{
		PoolSize:                poolSize,
		HistorySize:             historySize,
		Species:                 species,
		Selection:               SelectionDrawScan,
		SoftnessExponent:        DefaultSoftnessExponent,
		AsymmetricNormalization: true,
		CandidateUpdates:        CandidateUpdatesLive,
	}
}

// Validate checks sizes, policy names, and every species' domain.
func (c EngineConfig) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("history size must be positive, got %d", c.HistorySize)
	}
	if !ValidSelectionPolicies[c.Selection] {
		return fmt.Errorf("unknown selection policy %q", c.Selection)
	}
	if !ValidCandidateUpdates[c.CandidateUpdates] {
		return fmt.Errorf("unknown candidate update mode %q", c.CandidateUpdates)
	}
	if math.IsNaN(c.SoftnessExponent) {
		return fmt.Errorf("softness exponent must be a number")
	}
	if len(c.Species) == 0 {
		return fmt.Errorf("at least one species required")
	}
	total := 0.0
	for i, s := range c.Species {
		if err := validateSpecies(s, i); err != nil {
			return err
		}
		total += s.Abundance
	}
	if total <= 0 {
		return fmt.Errorf("at least one species must have positive abundance")
	}
	return nil
}

func validateSpecies(s Species, idx int) error {
	prefix := fmt.Sprintf("species[%d]", idx)
	if !isFinite(s.Diameter) || s.Diameter <= 0 {
		return fmt.Errorf("%s: diameter must be a positive number, got %f", prefix, s.Diameter)
	}
	if !isFinite(s.Softness) || s.Softness < 0 || s.Softness > 1 {
		return fmt.Errorf("%s: softness must be in [0,1], got %f", prefix, s.Softness)
	}
	if !isFinite(s.Abundance) || s.Abundance < 0 {
		return fmt.Errorf("%s: abundance must be non-negative, got %f", prefix, s.Abundance)
	}
	return nil
}
