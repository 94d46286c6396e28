package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultsPath(t *testing.T) string {
	t.Helper()
	path := "defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "../defaults.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Skip("defaults.yaml not found, skipping integration test")
		}
	}
	return path
}

func TestDefaultsYAML_EveryPresetValid(t *testing.T) {
	// GIVEN the shipped defaults file
	cfg, err := loadDefaultsConfig(defaultsPath(t))
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Presets)

	// THEN every preset resolves to a valid engine configuration
	for name, preset := range cfg.Presets {
		preset := preset
		assert.NoError(t, preset.Validate(), "preset %s", name)
	}
}

func TestGetPreset(t *testing.T) {
	path := defaultsPath(t)

	preset, err := GetPreset("reference", path)
	require.NoError(t, err)
	assert.Len(t, preset.Species, 3)

	_, err = GetPreset("no-such-preset", path)
	assert.ErrorContains(t, err, "unknown preset")
}

func TestLoadDefaultsConfig_StrictFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\npresetz: {}\n"), 0644))

	_, err := loadDefaultsConfig(path)
	assert.ErrorContains(t, err, "parsing defaults YAML")
}

func TestLoadDefaultsConfig_StrictPresetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	body := "presets:\n  p:\n    pool_size: 4\n    softnes_exponent: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := loadDefaultsConfig(path)
	assert.Error(t, err)
}
