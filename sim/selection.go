package sim

import (
	"fmt"
	"math/rand"
)

// Selection policy names accepted by NewSelectionPolicy.
const (
	SelectionDrawScan  = "draw-scan"
	SelectionThreshold = "threshold"
)

// SelectionPolicy picks at most one winner among scored candidates.
// Implementations weight the choice by each slot's Probability; they differ only
// in how often a tick yields no placement.
type SelectionPolicy interface {
	// Select returns the index of the winning slot, or -1, together with the
	// random value the scan was performed against (for tracing).
	Select(slots []CandidateSlot, rng *rand.Rand) (winner int, draw float64)
}

// DrawThenScan draws r uniformly from [0, Σp) and scans slots in order until the
// running sum passes r. A tick whose probabilities are all zero places nothing
// and consumes no random draw.
type DrawThenScan struct{}

// Select implements SelectionPolicy for DrawThenScan.
func (DrawThenScan) Select(slots []CandidateSlot, rng *rand.Rand) (int, float64) {
	sum := 0.0
	for _, s := range slots {
		sum += s.Probability
	}
	if sum <= 0 {
		return -1, 0
	}
	r := rng.Float64() * sum
	return scanWeighted(slots, r), r
}

// ThresholdPick holds a persistent fire threshold. A tick fires only when the
// threshold is below the best candidate probability; the winner is then scanned
// at threshold·Σp and the threshold redrawn.
type ThresholdPick struct {
	fire float64
}

// NewThresholdPick draws the initial fire threshold from rng.
func NewThresholdPick(rng *rand.Rand) *ThresholdPick {
	return &ThresholdPick{fire: rng.Float64()}
}

// Threshold returns the current fire threshold.
func (tp *ThresholdPick) Threshold() float64 { return tp.fire }

// Select implements SelectionPolicy for ThresholdPick.
func (tp *ThresholdPick) Select(slots []CandidateSlot, rng *rand.Rand) (int, float64) {
	pMax, sum := 0.0, 0.0
	for _, s := range slots {
		if s.Probability > pMax {
			pMax = s.Probability
		}
		sum += s.Probability
	}
	if tp.fire >= pMax {
		return -1, tp.fire
	}
	r := tp.fire * sum
	winner := scanWeighted(slots, r)
	tp.fire = rng.Float64()
	return winner, r
}

// scanWeighted returns the first slot with nonzero probability whose cumulative
// interval contains r. Accumulated rounding can leave r just past the final
// interval; the last selectable slot takes that case.
func scanWeighted(slots []CandidateSlot, r float64) int {
	cum := 0.0
	last := -1
	for i, s := range slots {
		if s.Probability != 0 {
			if r < cum+s.Probability {
				return i
			}
			last = i
		}
		cum += s.Probability
	}
	return last
}

// NewSelectionPolicy creates a selection policy by name.
// Valid names: "draw-scan" (default when empty), "threshold".
func NewSelectionPolicy(name string, rng *rand.Rand) SelectionPolicy {
	switch name {
	case "", SelectionDrawScan:
		return DrawThenScan{}
	case SelectionThreshold:
		return NewThresholdPick(rng)
	default:
		panic(fmt.Sprintf("unknown selection policy %q; valid policies: [draw-scan, threshold]", name))
	}
}
