// sim/engine.go
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/jammed-packing/sim/trace"
)

// GlobalState is the engine-wide mutable state, reset only on construction.
type GlobalState struct {
	Tick             int64   `json:"tick"`
	SoftnessExponent float64 `json:"softness_exponent"`
	// FireThreshold is the persistent threshold of the threshold selection policy
	// (zero under draw-then-scan).
	FireThreshold float64 `json:"fire_threshold"`
}

// Outcome is the result of one engine step.
type Outcome struct {
	Tick      int64
	Placed    bool
	Forced    bool
	SpeciesID int // -1 when nothing was placed
}

// Engine is the placement engine: it owns the species registry, the history window,
// the candidate pool, and one random stream, and advances them one tick at a time.
//
// An Engine is not safe for concurrent use. Every method runs to completion without
// blocking; Tick does not allocate unless tracing is enabled.
type Engine struct {
	registry  *Registry
	history   *History
	pool      *Pool
	selection SelectionPolicy
	rng       *rand.Rand

	tick       int64
	exponent   float64
	asymmetric bool
	live       bool

	trace *trace.GeneratorTrace
}

// NewEngine validates cfg and builds an engine drawing from rng.
// The pool is filled immediately, so construction consumes PoolSize draws
// (plus one for the threshold policy's initial fire threshold).
func NewEngine(cfg EngineConfig, rng *rand.Rand) (*Engine, error) {
	if rng == nil {
		return nil, fmt.Errorf("engine requires a random source")
	}
	if cfg.Selection == "" {
		cfg.Selection = SelectionDrawScan
	}
	if cfg.CandidateUpdates == "" {
		cfg.CandidateUpdates = CandidateUpdatesLive
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		registry:   newRegistry(cfg.Species),
		history:    NewHistory(cfg.HistorySize),
		rng:        rng,
		exponent:   clamp01(cfg.SoftnessExponent),
		asymmetric: cfg.AsymmetricNormalization,
		live:       cfg.CandidateUpdates == CandidateUpdatesLive,
	}
	e.selection = NewSelectionPolicy(cfg.Selection, rng)
	e.pool = newPool(cfg.PoolSize, e.registry, rng)

	logrus.Infof("Engine ready: %d species, pool=%d, history=%d, selection=%s, exp=%.3f, asymmetric=%v, updates=%s",
		e.registry.Len(), cfg.PoolSize, cfg.HistorySize, cfg.Selection, e.exponent, e.asymmetric, cfg.CandidateUpdates)
	return e, nil
}

// SetTrace attaches a trace collector; nil detaches it.
func (e *Engine) SetTrace(gt *trace.GeneratorTrace) {
	e.trace = gt
}

// Clock returns the current tick.
func (e *Engine) Clock() int64 { return e.tick }

// PoolSize returns the number of pending candidates (constant for the engine's lifetime).
func (e *Engine) PoolSize() int { return e.pool.Size() }

// HistoryLen returns how many placements the history window currently holds.
func (e *Engine) HistoryLen() int { return e.history.Len() }

// NumSpecies returns the registry size.
func (e *Engine) NumSpecies() int { return e.registry.Len() }

// Species returns the registry entry with the given id.
func (e *Engine) Species(id int) (Species, bool) { return e.registry.Get(id) }

// Tick advances the clock by one and attempts a stochastic placement.
// A tick with no placeable candidate is a normal outcome, not an error.
func (e *Engine) Tick() Outcome {
	e.Advance()
	return e.TryPlace()
}

// Advance moves the clock forward one tick without attempting a placement.
// Hosts that force placements inside a frame call Advance, then ForcePlacement
// or TryPlace.
func (e *Engine) Advance() {
	e.tick++
}

// TryPlace scores the pool against the history and lets the selection policy pick
// at most one winner at the current tick.
func (e *Engine) TryPlace() Outcome {
	e.score()
	probs := e.traceProbabilities()
	winner, draw := e.selection.Select(e.pool.slots, e.rng)

	out := Outcome{Tick: e.tick, SpeciesID: -1}
	if winner >= 0 {
		out.Placed = true
		out.SpeciesID = e.commit(winner)
		logrus.Debugf("[tick %07d] placed species %d", e.tick, out.SpeciesID)
	}
	e.recordStep(out, draw, probs)
	return out
}

// ForcePlacement places a species at the current tick, bypassing selection. The
// first pending candidate of that species is consumed and its slot replenished;
// with none pending the registry entry is placed directly and the pool is left
// unchanged. An out-of-range id is ignored.
func (e *Engine) ForcePlacement(speciesID int) Outcome {
	out := Outcome{Tick: e.tick, SpeciesID: -1}
	s, ok := e.registry.Get(speciesID)
	if !ok {
		logrus.Debugf("[tick %07d] forced placement of unknown species %d ignored", e.tick, speciesID)
		return out
	}
	if i := e.pool.firstOf(speciesID); i >= 0 {
		e.commit(i)
	} else {
		e.history.Push(HistoryEntry{SpeciesID: s.ID, Diameter: s.Diameter, Softness: s.Softness, Marker: e.tick})
	}
	out.Placed, out.Forced, out.SpeciesID = true, true, speciesID
	logrus.Debugf("[tick %07d] forced species %d", e.tick, speciesID)
	e.recordStep(out, 0, nil)
	return out
}

// score sets every slot's placement probability to 1 - total resistance.
func (e *Engine) score() {
	opts := e.resistanceOptions()
	for i := range e.pool.slots {
		c := &e.pool.slots[i]
		c.Probability = math.Max(0, 1-TotalResistance(c.body(), c.Drive, e.history, e.tick, opts))
	}
}

// commit moves slot i into the history at the current tick and refills the slot.
func (e *Engine) commit(i int) int {
	c := e.pool.slots[i]
	e.history.Push(HistoryEntry{SpeciesID: c.SpeciesID, Diameter: c.Diameter, Softness: c.Softness, Marker: e.tick})
	e.pool.replenish(i, e.registry, e.rng)
	return c.SpeciesID
}

func (e *Engine) resistanceOptions() ResistanceOptions {
	return ResistanceOptions{Exponent: e.exponent, Asymmetric: e.asymmetric}
}

// Probabilities scores the pool at the current tick without placing anything.
func (e *Engine) Probabilities() []float64 {
	e.score()
	out := make([]float64, len(e.pool.slots))
	for i, c := range e.pool.slots {
		out[i] = c.Probability
	}
	return out
}

// === Parameter setters ===
// Invalid input is ignored: each setter reports whether the edit was applied and
// never returns an error, so a live control surface cannot halt generation.

// SetDiameter sets a species' diameter (> 0).
func (e *Engine) SetDiameter(id int, v float64) bool {
	ok := e.registry.SetDiameter(id, v)
	if ok && e.live {
		e.pool.syncSpecies(e.registry.species[id])
	}
	e.recordEdit("setDiameter", id, v, ok)
	return ok
}

// SetSoftness sets a species' softness ([0,1]).
func (e *Engine) SetSoftness(id int, v float64) bool {
	ok := e.registry.SetSoftness(id, v)
	if ok && e.live {
		e.pool.syncSpecies(e.registry.species[id])
	}
	e.recordEdit("setSoftness", id, v, ok)
	return ok
}

// SetAbundance sets a species' draw weight (>= 0). Takes effect on the next replenishment.
func (e *Engine) SetAbundance(id int, v float64) bool {
	ok := e.registry.SetAbundance(id, v)
	e.recordEdit("setAbundance", id, v, ok)
	return ok
}

// AddSpecies appends a species and returns its id, or NoSpecies when rejected.
func (e *Engine) AddSpecies(diameter, softness float64) int {
	id := e.registry.AddSpecies(diameter, softness)
	e.recordEdit("add", id, diameter, id != NoSpecies)
	return id
}

// RemoveSpecies removes a species and re-indexes the rest. Pending candidates of
// the removed species are redrawn in either update mode.
func (e *Engine) RemoveSpecies(id int) bool {
	ok := e.registry.RemoveSpecies(id)
	if ok {
		e.pool.removeSpecies(id, e.registry, e.rng)
	}
	e.recordEdit("remove", id, 0, ok)
	return ok
}

// SetSoftnessExponent stores v clamped to [0,1]; NaN is ignored.
func (e *Engine) SetSoftnessExponent(v float64) bool {
	if math.IsNaN(v) {
		e.recordEdit("exp", -1, v, false)
		return false
	}
	e.exponent = clamp01(v)
	e.recordEdit("exp", -1, v, true)
	return true
}

// SetCandidateDrive sets the drive override, clamped to [0,1], on every pending
// candidate of a species. Meant for per-frame signal input; not traced.
func (e *Engine) SetCandidateDrive(speciesID int, v float64) {
	v = clamp01(v)
	for i := range e.pool.slots {
		if e.pool.slots[i].SpeciesID == speciesID {
			e.pool.slots[i].Drive = v
		}
	}
}

// SetCandidateSoftness overrides the softness, clamped to [0,1], of every pending
// candidate of a species without touching the registry.
func (e *Engine) SetCandidateSoftness(speciesID int, v float64) {
	v = clamp01(v)
	for i := range e.pool.slots {
		if e.pool.slots[i].SpeciesID == speciesID {
			e.pool.slots[i].Softness = v
		}
	}
}

// ResetDrive clears every pending candidate's drive override.
func (e *Engine) ResetDrive() {
	for i := range e.pool.slots {
		e.pool.slots[i].Drive = 0
	}
}

// === Tracing ===

// traceProbabilities copies the scored pool when the trace asks for it.
func (e *Engine) traceProbabilities() []float64 {
	if !e.trace.WantsCandidates() {
		return nil
	}
	probs := make([]float64, len(e.pool.slots))
	for i, c := range e.pool.slots {
		probs[i] = c.Probability
	}
	return probs
}

func (e *Engine) recordStep(out Outcome, draw float64, probs []float64) {
	if !e.trace.Enabled() {
		return
	}
	e.trace.RecordPlacement(trace.PlacementRecord{
		Tick:          out.Tick,
		Placed:        out.Placed,
		Forced:        out.Forced,
		SpeciesID:     out.SpeciesID,
		Draw:          draw,
		Probabilities: probs,
	})
}

func (e *Engine) recordEdit(op string, id int, v float64, applied bool) {
	if !applied {
		logrus.Debugf("[tick %07d] %s(%d, %v) rejected", e.tick, op, id, v)
	}
	if !e.trace.Enabled() {
		return
	}
	e.trace.RecordEdit(trace.EditRecord{Tick: e.tick, Op: op, Species: id, Value: v, Applied: applied})
}
