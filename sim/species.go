package sim

import "math"

// NoSpecies is returned by AddSpecies when the species is rejected.
const NoSpecies = -1

// Species is a class of event: its temporal footprint, how much of that footprint
// can compress under pressure from neighbours, and its relative draw weight.
type Species struct {
	ID        int     `yaml:"-" json:"id"`
	Diameter  float64 `yaml:"diameter" json:"diameter"`   // footprint in ticks (> 0)
	Softness  float64 `yaml:"softness" json:"softness"`   // [0,1]
	Abundance float64 `yaml:"abundance" json:"abundance"` // draw weight (>= 0)
}

// Give is the amount of compression the species' footprint absorbs before fully resisting.
func (s Species) Give() float64 {
	return s.Diameter * s.Softness
}

// Registry is the engine-owned species catalog. Ids are dense indices.
// Invariant: at least one species exists and the total abundance is positive.
type Registry struct {
	species []Species
}

// newRegistry copies species into a registry, assigning dense ids.
// Callers validate input first (see EngineConfig.Validate).
func newRegistry(species []Species) *Registry {
	r := &Registry{species: make([]Species, len(species))}
	copy(r.species, species)
	r.reindex()
	return r
}

// Len returns the number of species.
func (r *Registry) Len() int { return len(r.species) }

// Get returns the species with the given id.
func (r *Registry) Get(id int) (Species, bool) {
	if !r.valid(id) {
		return Species{}, false
	}
	return r.species[id], true
}

// All returns a copy of the catalog in id order.
func (r *Registry) All() []Species {
	out := make([]Species, len(r.species))
	copy(out, r.species)
	return out
}

// TotalAbundance sums every species' abundance.
func (r *Registry) TotalAbundance() float64 {
	total := 0.0
	for _, s := range r.species {
		total += s.Abundance
	}
	return total
}

// SetDiameter applies a diameter edit; v must be finite and > 0.
func (r *Registry) SetDiameter(id int, v float64) bool {
	if !r.valid(id) || !isFinite(v) || v <= 0 {
		return false
	}
	r.species[id].Diameter = v
	return true
}

// SetSoftness applies a softness edit; v must lie in [0,1].
func (r *Registry) SetSoftness(id int, v float64) bool {
	if !r.valid(id) || !isFinite(v) || v < 0 || v > 1 {
		return false
	}
	r.species[id].Softness = v
	return true
}

// SetAbundance applies an abundance edit; v must be finite and >= 0, and the
// edit is refused if it would leave no species with positive abundance.
func (r *Registry) SetAbundance(id int, v float64) bool {
	if !r.valid(id) || !isFinite(v) || v < 0 {
		return false
	}
	if r.TotalAbundance()-r.species[id].Abundance+v <= 0 {
		return false
	}
	r.species[id].Abundance = v
	return true
}

// AddSpecies appends a species with abundance 1 and returns its id, or NoSpecies
// unless diameter > 0 and softness lies strictly inside (0,1).
func (r *Registry) AddSpecies(diameter, softness float64) int {
	if !isFinite(diameter) || diameter <= 0 || !isFinite(softness) || softness <= 0 || softness >= 1 {
		return NoSpecies
	}
	id := len(r.species)
	r.species = append(r.species, Species{ID: id, Diameter: diameter, Softness: softness, Abundance: 1})
	return id
}

// RemoveSpecies deletes a species and re-indexes the rest densely from 0.
// Refused when id is out of range, only one species remains, or the removal would
// leave the total abundance at zero.
func (r *Registry) RemoveSpecies(id int) bool {
	if !r.valid(id) || len(r.species) == 1 {
		return false
	}
	if r.TotalAbundance()-r.species[id].Abundance <= 0 {
		return false
	}
	r.species = append(r.species[:id], r.species[id+1:]...)
	r.reindex()
	return true
}

func (r *Registry) valid(id int) bool {
	return id >= 0 && id < len(r.species)
}

func (r *Registry) reindex() {
	for i := range r.species {
		r.species[i].ID = i
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
