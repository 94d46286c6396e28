package sim

import (
	"fmt"
	"io"
	"strings"
)

// Snapshot is a read-only copy of engine state for diagnostics.
// Mutating it has no effect on the engine.
type Snapshot struct {
	State   GlobalState     `json:"state"`
	Species []Species       `json:"species"`
	Pool    []CandidateSlot `json:"pool"`
	History []HistoryEntry  `json:"history"` // oldest first
}

// Snapshot copies the current species table, candidate pool, history window, and global state.
func (e *Engine) Snapshot() Snapshot {
	state := GlobalState{Tick: e.tick, SoftnessExponent: e.exponent}
	if tp, ok := e.selection.(*ThresholdPick); ok {
		state.FireThreshold = tp.Threshold()
	}
	return Snapshot{
		State:   state,
		Species: e.registry.All(),
		Pool:    e.pool.Slots(),
		History: e.history.Entries(),
	}
}

// Report writes a console summary: species parameters, pending candidates, and the
// most recent placement.
func (s Snapshot) Report(w io.Writer) {
	diameters := make([]string, len(s.Species))
	softness := make([]string, len(s.Species))
	abundances := make([]string, len(s.Species))
	for i, sp := range s.Species {
		diameters[i] = fmt.Sprintf("%.3f", sp.Diameter)
		softness[i] = fmt.Sprintf("%.3f", sp.Softness)
		abundances[i] = fmt.Sprintf("%.3f", sp.Abundance)
	}
	fmt.Fprintf(w, "tick: %d  exp: %.3f\n", s.State.Tick, s.State.SoftnessExponent)
	fmt.Fprintf(w, "diameters: %s\n", strings.Join(diameters, " "))
	fmt.Fprintf(w, "softness: %s\n", strings.Join(softness, " "))
	fmt.Fprintf(w, "abundances: %s\n", strings.Join(abundances, " "))

	pending := make([]string, len(s.Pool))
	for i, c := range s.Pool {
		pending[i] = fmt.Sprintf("%d:%.1f", c.SpeciesID, c.Diameter)
	}
	fmt.Fprintf(w, "candidates: %s\n", strings.Join(pending, " "))

	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		fmt.Fprintf(w, "lastOne: species %d diameter %.3f at tick %d (%d)\n", last.SpeciesID, last.Diameter, last.Marker, n)
	} else {
		fmt.Fprintln(w, "lastOne: none (0)")
	}
}
