package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGeneratorYAML = `
pool_size: 8
history_size: 12
selection: threshold
softness_exponent: 0.5
asymmetric_normalization: false
candidate_updates: stale
species:
  - {diameter: 8, softness: 0.2, abundance: 1}
  - {diameter: 12, softness: 0.5, abundance: 2}
`

func TestParseGeneratorConfig_AllFields(t *testing.T) {
	g, err := ParseGeneratorConfig([]byte(sampleGeneratorYAML))
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	cfg := g.EngineConfig()
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, 12, cfg.HistorySize)
	assert.Equal(t, SelectionThreshold, cfg.Selection)
	assert.Equal(t, 0.5, cfg.SoftnessExponent)
	assert.False(t, cfg.AsymmetricNormalization)
	assert.Equal(t, CandidateUpdatesStale, cfg.CandidateUpdates)
	assert.Equal(t, []Species{
		{Diameter: 8, Softness: 0.2, Abundance: 1},
		{Diameter: 12, Softness: 0.5, Abundance: 2},
	}, cfg.Species)
}

func TestParseGeneratorConfig_UnsetFieldsUseDefaults(t *testing.T) {
	// GIVEN a config naming only its species
	g, err := ParseGeneratorConfig([]byte("species:\n  - {diameter: 4, softness: 0.5, abundance: 1}\n"))
	require.NoError(t, err)

	// WHEN resolved
	cfg := g.EngineConfig()

	// THEN everything else falls back to the package defaults
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)
	assert.Equal(t, SelectionDrawScan, cfg.Selection)
	assert.Equal(t, DefaultSoftnessExponent, cfg.SoftnessExponent)
	assert.True(t, cfg.AsymmetricNormalization)
	assert.Equal(t, CandidateUpdatesLive, cfg.CandidateUpdates)
}

func TestParseGeneratorConfig_ExplicitZeroExponentKept(t *testing.T) {
	g, err := ParseGeneratorConfig([]byte("softness_exponent: 0\nspecies:\n  - {diameter: 4, softness: 0.5, abundance: 1}\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.EngineConfig().SoftnessExponent)
}

func TestParseGeneratorConfig_UnknownKeyRejected(t *testing.T) {
	_, err := ParseGeneratorConfig([]byte("pool_sise: 8\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing generator config")
}

func TestGeneratorConfig_Validate(t *testing.T) {
	species := "species:\n  - {diameter: 4, softness: 0.5, abundance: 1}\n"
	tests := []struct {
		name string
		yaml string
	}{
		{"negative pool", "pool_size: -2\n" + species},
		{"negative history", "history_size: -1\n" + species},
		{"exponent above one", "softness_exponent: 1.5\n" + species},
		{"unknown selection", "selection: lottery\n" + species},
		{"no species", "pool_size: 4\n"},
		{"bad species", "species:\n  - {diameter: 0, softness: 0.5, abundance: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGeneratorConfig([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Error(t, g.Validate())
		})
	}
}

func TestLoadGeneratorConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeneratorYAML), 0644))

	g, err := LoadGeneratorConfig(path)
	require.NoError(t, err)
	assert.Len(t, g.Species, 2)

	_, err = LoadGeneratorConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading generator config")
}

func TestGeneratorConfig_EngineConfig_CopiesSpecies(t *testing.T) {
	g, err := ParseGeneratorConfig([]byte(sampleGeneratorYAML))
	require.NoError(t, err)
	cfg := g.EngineConfig()
	cfg.Species[0].Diameter = 99
	assert.Equal(t, 8.0, g.Species[0].Diameter)
}
