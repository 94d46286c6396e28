package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/jammed-packing/sim"
	"github.com/inference-sim/jammed-packing/sim/host"
)

func withRenderFlags(t *testing.T, sampleRate, groups, voices int, mode string) {
	t.Helper()
	saved := []any{renderSampleRate, renderGroups, renderVoices, renderDriveMode, renderDiameterMs, renderTrigger, renderModRate}
	t.Cleanup(func() {
		renderSampleRate = saved[0].(int)
		renderGroups = saved[1].(int)
		renderVoices = saved[2].(int)
		renderDriveMode = saved[3].(string)
		renderDiameterMs = saved[4].(float64)
		renderTrigger = saved[5].(int)
		renderModRate = saved[6].(float64)
	})
	renderSampleRate, renderGroups, renderVoices, renderDriveMode = sampleRate, groups, voices, mode
	renderDiameterMs, renderTrigger, renderModRate = 5, 20, 2
}

func TestBuildRenderMix_EveryGroupPlaces(t *testing.T) {
	withRenderFlags(t, 8000, 2, 3, "nudge")

	var placed []sim.Outcome
	s, err := buildRenderMix(11, func(o sim.Outcome) { placed = append(placed, o) })
	require.NoError(t, err)

	buf := make([][2]float64, 4000)
	n, ok := s.Stream(buf)
	assert.Equal(t, len(buf), n)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, len(placed), 2, "each group places on its first frame")
}

func TestBuildRenderMix_RejectsBadFlags(t *testing.T) {
	withRenderFlags(t, 0, 1, 3, "nudge")
	_, err := buildRenderMix(1, nil)
	assert.Error(t, err)

	withRenderFlags(t, 8000, 0, 3, "nudge")
	_, err = buildRenderMix(1, nil)
	assert.Error(t, err)

	withRenderFlags(t, 8000, 1, 3, "shove")
	_, err = buildRenderMix(1, nil)
	assert.Error(t, err)
}

func TestParseDriveMode(t *testing.T) {
	m, err := parseDriveMode("forced")
	require.NoError(t, err)
	assert.Equal(t, host.DriveForced, m)

	m, err = parseDriveMode("")
	require.NoError(t, err)
	assert.Equal(t, host.DriveNudge, m)
}
