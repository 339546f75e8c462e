package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible run. Two runs with the same key and
// identical environment MUST initialize every register to the same value.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// PartitionedRNG hands out one deterministically seeded source per
// hierarchical scope, so the initial value of a register does not depend on
// the order in which other scopes were constructed.
//
// Derivation: masterSeed XOR fnv1a64(scopePath).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key    SimulationKey
	scopes map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:    key,
		scopes: make(map[string]*rand.Rand),
	}
}

// ForScope returns the RNG for the named scope path (e.g. "tb.dut.count").
// The same path always returns the same *rand.Rand instance. Never returns nil.
func (p *PartitionedRNG) ForScope(path string) *rand.Rand {
	if rng, ok := p.scopes[path]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(path)))
	p.scopes[path] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
