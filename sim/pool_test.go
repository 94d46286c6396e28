package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPool_FillsEverySlot(t *testing.T) {
	r := newRegistry(threeSpecies())
	p := newPool(16, r, rand.New(rand.NewSource(1)))

	assert.Equal(t, 16, p.Size())
	for i, c := range p.Slots() {
		s, ok := r.Get(c.SpeciesID)
		if !assert.True(t, ok, "slot %d references unknown species %d", i, c.SpeciesID) {
			continue
		}
		assert.Equal(t, s.Diameter, c.Diameter)
		assert.Equal(t, s.Softness, c.Softness)
	}
}

func TestDrawSpecies_ZeroAbundanceNeverDrawn(t *testing.T) {
	r := newRegistry([]Species{
		{Diameter: 1, Abundance: 0},
		{Diameter: 2, Abundance: 1},
		{Diameter: 3, Abundance: 0},
	})
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		s, ok := drawSpecies(r, rng)
		if !ok || s.ID != 1 {
			t.Fatalf("draw %d returned species %d (ok=%v), want 1", i, s.ID, ok)
		}
	}
}

func TestDrawSpecies_FollowsAbundance(t *testing.T) {
	// GIVEN abundances 1:3
	r := newRegistry([]Species{{Diameter: 1, Abundance: 1}, {Diameter: 1, Abundance: 3}})
	rng := rand.New(rand.NewSource(11))

	// WHEN drawing many times
	counts := [2]int{}
	for i := 0; i < 20000; i++ {
		s, _ := drawSpecies(r, rng)
		counts[s.ID]++
	}

	// THEN species 1 is drawn about three quarters of the time
	frac := float64(counts[1]) / 20000
	assert.InDelta(t, 0.75, frac, 0.02)
}

func TestDrawSpecies_ZeroTotal_Fails(t *testing.T) {
	r := &Registry{species: []Species{{Diameter: 1, Abundance: 0}}}
	rng := rand.New(rand.NewSource(1))
	_, ok := drawSpecies(r, rng)
	assert.False(t, ok)

	// a failed replenish leaves the slot untouched
	p := &Pool{slots: []CandidateSlot{{SpeciesID: 0, Diameter: 4}}}
	assert.False(t, p.replenish(0, r, rng))
	assert.Equal(t, 4.0, p.slots[0].Diameter)
}

func TestPool_RemoveSpecies_RedrawsAndShifts(t *testing.T) {
	// GIVEN a pool holding species 0, 1, 2 and a registry that just lost species 1
	r := newRegistry(threeSpecies())
	p := &Pool{slots: []CandidateSlot{
		{SpeciesID: 0, Diameter: 8},
		{SpeciesID: 1, Diameter: 12},
		{SpeciesID: 2, Diameter: 20},
	}}
	r.RemoveSpecies(1)

	// WHEN the pool follows the removal
	p.removeSpecies(1, r, rand.New(rand.NewSource(5)))

	// THEN old species 2 is now id 1 and the removed slot holds a surviving species
	assert.Equal(t, 0, p.slots[0].SpeciesID)
	assert.Equal(t, 1, p.slots[2].SpeciesID)
	assert.Equal(t, 20.0, p.slots[2].Diameter)
	survivor, ok := r.Get(p.slots[1].SpeciesID)
	assert.True(t, ok)
	assert.Equal(t, survivor.Diameter, p.slots[1].Diameter)
}
