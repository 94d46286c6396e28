package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/jammed-packing/sim"
)

func TestFeedMessages(t *testing.T) {
	// GIVEN a single species that blocks the tick after it is placed
	engine, err := newEngine(&sim.GeneratorConfig{
		PoolSize: 1,
		Species:  []sim.Species{{Diameter: 10, Softness: 0.5, Abundance: 1}},
	}, 42)
	require.NoError(t, err)

	// WHEN a script with a bad line is fed
	script := strings.Join([]string{
		"bang",
		"bang",
		"bogus 1",
		"# comment",
		"force 0",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, feedMessages(engine, strings.NewReader(script), &out))

	// THEN placements print as "<tick> <species>" and the bad line is skipped
	assert.Equal(t, "1 0\n3 0!\n", out.String())
}
