package sim

import "math/rand"

// CandidateSlot is a pending event: a copy of a species' geometry plus the
// transient placement probability and external drive override.
type CandidateSlot struct {
	SpeciesID   int     `json:"species_id"`
	Diameter    float64 `json:"diameter"`
	Softness    float64 `json:"softness"`
	Probability float64 `json:"probability"`
	Drive       float64 `json:"drive"`
}

func (c CandidateSlot) body() Body {
	return Body{Diameter: c.Diameter, Softness: c.Softness}
}

// Pool holds exactly Size() pending candidates. Slots are refilled in place.
type Pool struct {
	slots []CandidateSlot
}

// newPool fills size slots by drawing from the registry.
func newPool(size int, registry *Registry, rng *rand.Rand) *Pool {
	p := &Pool{slots: make([]CandidateSlot, size)}
	for i := range p.slots {
		p.replenish(i, registry, rng)
	}
	return p
}

// Size returns the fixed number of slots.
func (p *Pool) Size() int { return len(p.slots) }

// Slots returns a copy of the pool in slot order.
func (p *Pool) Slots() []CandidateSlot {
	out := make([]CandidateSlot, len(p.slots))
	copy(out, p.slots)
	return out
}

// replenish redraws slot i from the registry, weighted by abundance.
// Returns false, leaving the slot untouched, when no species can be drawn.
func (p *Pool) replenish(i int, registry *Registry, rng *rand.Rand) bool {
	s, ok := drawSpecies(registry, rng)
	if !ok {
		return false
	}
	p.slots[i] = CandidateSlot{SpeciesID: s.ID, Diameter: s.Diameter, Softness: s.Softness}
	return true
}

// drawSpecies performs one abundance-weighted draw: r = U·Σabundance, and the
// first species whose cumulative interval contains r wins.
func drawSpecies(registry *Registry, rng *rand.Rand) (Species, bool) {
	total := registry.TotalAbundance()
	if total <= 0 {
		return Species{}, false
	}
	r := rng.Float64() * total
	cum := 0.0
	for _, s := range registry.species {
		if s.Abundance > 0 && r < cum+s.Abundance {
			return s, true
		}
		cum += s.Abundance
	}
	// r landed on the rounding edge of the last interval
	for i := len(registry.species) - 1; i >= 0; i-- {
		if registry.species[i].Abundance > 0 {
			return registry.species[i], true
		}
	}
	return Species{}, false
}

// syncSpecies refreshes pending slots of a species from the registry.
func (p *Pool) syncSpecies(s Species) {
	for i := range p.slots {
		if p.slots[i].SpeciesID == s.ID {
			p.slots[i].Diameter = s.Diameter
			p.slots[i].Softness = s.Softness
		}
	}
}

// removeSpecies redraws slots of a removed species and shifts the ids of those
// above it down by one, matching the registry's re-indexing. The registry must
// already have been updated.
func (p *Pool) removeSpecies(id int, registry *Registry, rng *rand.Rand) {
	for i := range p.slots {
		switch {
		case p.slots[i].SpeciesID == id:
			p.replenish(i, registry, rng)
		case p.slots[i].SpeciesID > id:
			p.slots[i].SpeciesID--
		}
	}
}

// firstOf returns the index of the first pending slot of a species, or -1.
func (p *Pool) firstOf(speciesID int) int {
	for i := range p.slots {
		if p.slots[i].SpeciesID == speciesID {
			return i
		}
	}
	return -1
}
