package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === GeneratorKey ===

// GeneratorKey uniquely identifies a reproducible generator run.
// Two engines built from the same GeneratorKey and configuration, driven by the
// same call sequence, MUST produce bit-for-bit identical outcomes.
type GeneratorKey int64

// NewGeneratorKey creates a GeneratorKey from a seed value.
func NewGeneratorKey(seed int64) GeneratorKey {
	return GeneratorKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemPlacement is the stream owned by a placement Engine.
	// Uses the master seed directly so that --seed maps 1:1 onto engine draws.
	SubsystemPlacement = "placement"

	// SubsystemModulation feeds host-side modulation sources (signal inputs).
	SubsystemModulation = "modulation"
)

// SubsystemGroup returns the subsystem name for voice group N.
// Hosts running several engines side by side give each its own stream.
func SubsystemGroup(id int) string {
	return fmt.Sprintf("group_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemPlacement: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        GeneratorKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a GeneratorKey.
func NewPartitionedRNG(key GeneratorKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemPlacement {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the GeneratorKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() GeneratorKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
