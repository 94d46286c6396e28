package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func slotsWith(probs ...float64) []CandidateSlot {
	slots := make([]CandidateSlot, len(probs))
	for i, p := range probs {
		slots[i] = CandidateSlot{SpeciesID: i, Probability: p}
	}
	return slots
}

func TestScanWeighted(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		r     float64
		want  int
	}{
		{"first interval", []float64{0.5, 0.5}, 0.3, 0},
		{"second interval", []float64{0.5, 0.5}, 0.7, 1},
		{"zero slot skipped", []float64{0.5, 0, 0.5}, 0.5, 2},
		{"leading zero skipped", []float64{0, 1}, 0, 1},
		{"rounding past the end goes to last selectable", []float64{0.5, 0.25, 0}, 0.75, 1},
		{"nothing selectable", []float64{0, 0}, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanWeighted(slotsWith(tt.probs...), tt.r))
		})
	}
}

func TestDrawThenScan_AllZero_NoPlacementNoDraw(t *testing.T) {
	// GIVEN every candidate unplaceable
	rng := rand.New(rand.NewSource(9))
	fresh := rand.New(rand.NewSource(9))

	// WHEN selecting
	winner, _ := DrawThenScan{}.Select(slotsWith(0, 0, 0), rng)

	// THEN nothing is placed and the stream is untouched
	assert.Equal(t, -1, winner)
	assert.Equal(t, fresh.Float64(), rng.Float64())
}

func TestDrawThenScan_NeverPicksZeroProbability(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	slots := slotsWith(0, 0.3, 0, 0.7, 0)
	for i := 0; i < 5000; i++ {
		winner, draw := DrawThenScan{}.Select(slots, rng)
		if winner != 1 && winner != 3 {
			t.Fatalf("draw %v picked slot %d with zero probability", draw, winner)
		}
	}
}

func TestThresholdPick_HoldsThresholdWhenNotFiring(t *testing.T) {
	// GIVEN a threshold above every candidate probability
	tp := &ThresholdPick{fire: 0.9}

	// WHEN selecting
	winner, _ := tp.Select(slotsWith(0.5, 0.2), rand.New(rand.NewSource(1)))

	// THEN nothing fires and the threshold persists
	assert.Equal(t, -1, winner)
	assert.Equal(t, 0.9, tp.Threshold())
}

func TestThresholdPick_FiresAndRedraws(t *testing.T) {
	// GIVEN a threshold below the best candidate
	tp := &ThresholdPick{fire: 0.2}
	rng := rand.New(rand.NewSource(4))
	next := rand.New(rand.NewSource(4)).Float64()

	// WHEN selecting: r = 0.2 * 1.0 falls in slot 0's interval
	winner, draw := tp.Select(slotsWith(0.5, 0.5), rng)

	// THEN slot 0 wins and the threshold is redrawn from the stream
	assert.Equal(t, 0, winner)
	assert.InDelta(t, 0.2, draw, 1e-12)
	assert.Equal(t, next, tp.Threshold())
}

func TestNewSelectionPolicy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.IsType(t, DrawThenScan{}, NewSelectionPolicy("", rng))
	assert.IsType(t, DrawThenScan{}, NewSelectionPolicy(SelectionDrawScan, rng))
	assert.IsType(t, &ThresholdPick{}, NewSelectionPolicy(SelectionThreshold, rng))
	assert.Panics(t, func() { NewSelectionPolicy("round-robin", rng) })
}
