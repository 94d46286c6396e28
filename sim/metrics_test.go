package sim

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedAt(m *Metrics, species int, ticks ...int64) {
	for _, t := range ticks {
		m.Observe(Outcome{Tick: t, Placed: true, SpeciesID: species})
	}
}

func TestMetrics_Observe_Counts(t *testing.T) {
	m := NewMetrics()
	placedAt(m, 0, 1, 4)
	m.Observe(Outcome{Tick: 5, SpeciesID: -1})
	m.Observe(Outcome{Tick: 6, Placed: true, Forced: true, SpeciesID: 2})

	assert.Equal(t, int64(6), m.Ticks)
	assert.Equal(t, 3, m.Placements)
	assert.Equal(t, 1, m.Forced)
	assert.Equal(t, 1, m.EmptyTicks)
	assert.Equal(t, map[int]int{0: 2, 2: 1}, m.Species)
	assert.InDelta(t, 0.5, m.PlacementRate(), 1e-12)
}

func TestMetrics_IntervalStats(t *testing.T) {
	// GIVEN a perfectly regular sequence
	m := NewMetrics()
	placedAt(m, 0, 1, 4, 7, 10)

	// THEN the gaps have mean 3 and no spread
	mean, std := m.IntervalStats()
	assert.InDelta(t, 3, mean, 1e-12)
	assert.InDelta(t, 0, std, 1e-12)

	// too few onsets for a spread
	mean, _ = m.SpeciesIntervalStats(5)
	assert.True(t, math.IsNaN(mean))
}

func TestMetrics_NumberVariance(t *testing.T) {
	// GIVEN onsets at 1, 2, 5 over 8 ticks: windows of 2 hold 2, 0, 1, 0
	m := NewMetrics()
	placedAt(m, 0, 1, 2, 5)
	m.Observe(Outcome{Tick: 8, SpeciesID: -1})

	// THEN the sample variance of those counts is 11/12
	assert.InDelta(t, 11.0/12.0, m.NumberVariance(2), 1e-12)

	// windows that do not fit twice are undefined
	assert.True(t, math.IsNaN(m.NumberVariance(5)))
	assert.True(t, math.IsNaN(m.NumberVariance(0)))
}

func TestMetrics_NumberVariance_RegularSequenceIsFlat(t *testing.T) {
	m := NewMetrics()
	for tick := int64(1); tick <= 100; tick++ {
		if tick%4 == 1 {
			placedAt(m, 0, tick)
		} else {
			m.Observe(Outcome{Tick: tick, SpeciesID: -1})
		}
	}
	assert.InDelta(t, 0, m.NumberVariance(4), 1e-12)
	assert.InDelta(t, 0, m.NumberVariance(20), 1e-12)
}

func TestMetrics_Print(t *testing.T) {
	m := NewMetrics()
	placedAt(m, 0, 1, 4, 7)
	placedAt(m, 1, 9)
	m.Observe(Outcome{Tick: 12000, SpeciesID: -1})

	var buf bytes.Buffer
	m.Print(&buf, 4)
	out := buf.String()

	assert.Contains(t, out, "=== Generator Metrics ===")
	assert.Contains(t, out, "12,000")
	assert.Contains(t, out, "species 0")
	assert.Contains(t, out, "species 1")
}

func TestMetrics_SaveResults(t *testing.T) {
	m := NewMetrics()
	placedAt(m, 1, 1, 3, 5)

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, m.SaveResults("run-1", 2, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got MetricsOutput
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 3, got.Placements)
	assert.Equal(t, map[string]int{"1": 3}, got.SpeciesCounts)
	assert.InDelta(t, 2, got.IntervalMean, 1e-12)

	// empty path is a no-op
	assert.NoError(t, m.SaveResults("run-1", 2, ""))
}
