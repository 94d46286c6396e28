// Package trace provides placement-trace recording for generator analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// PlacementRecord captures the outcome of one engine step.
type PlacementRecord struct {
	Tick      int64
	Placed    bool
	Forced    bool    // placement bypassed stochastic selection
	SpeciesID int     // -1 when nothing was placed
	Draw      float64 // value the weighted scan ran against (0 when no draw happened)
	// Probabilities holds each pool slot's placement probability at scoring time.
	// Populated only at TraceLevelCandidates.
	Probabilities []float64
}

// EditRecord captures a registry or global-parameter edit from the host.
type EditRecord struct {
	Tick    int64
	Op      string // e.g. "setDiameter", "remove", "exp"
	Species int    // -1 for global edits
	Value   float64
	Applied bool // false when the edit was rejected as invalid
}
