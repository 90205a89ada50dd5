package x

import "math"

const (
	randModulus    = 2147483647 // 2^31-1
	randMultiplier = 16807      // bits 14, 8, 7, 5, 2, 1, 0
)

// Random is a small deterministic generator (Park-Miller minimal standard).
// It is not safe for concurrent use; give each owner its own instance.
type Random struct {
	seed uint32
}

// NewRandom returns a generator seeded with s. Seeds 0 and 2^31-1 would
// make the sequence degenerate and are replaced with 1.
func NewRandom(s uint32) *Random {
	seed := s & randModulus
	if seed == 0 || seed == randModulus {
		seed = 1
	}
	return &Random{seed: seed}
}

// Next advances the generator and returns the new 31-bit value.
func (r *Random) Next() uint32 {
	// seed = (seed * A) % M, computed without a division:
	// (p >> 31) + (p & M) is congruent to p mod M and fits in 32 bits.
	product := uint64(r.seed) * randMultiplier
	seed := uint32((product >> 31) + (product & randModulus))
	if seed > randModulus {
		seed -= randModulus
	}
	r.seed = seed
	return seed
}

// Uniform returns a value in [0, n). n must be positive and fit in 32 bits.
func (r *Random) Uniform(n int) uint32 {
	if n <= 0 || uint64(n) > math.MaxUint32 {
		Panicf("uniform bound %d", n)
	}
	return r.Next() % uint32(n)
}

// OneIn returns true roughly once every n calls.
func (r *Random) OneIn(n int) bool {
	return r.Uniform(n) == 0
}

// Skewed picks base uniformly from [0, maxLog] and then returns a value
// uniformly from [0, 2^base), favouring small numbers. maxLog is in [0, 30].
func (r *Random) Skewed(maxLog int) uint32 {
	if maxLog < 0 || maxLog > 30 {
		Panicf("skewed log bound %d", maxLog)
	}
	return r.Uniform(1 << r.Uniform(maxLog+1))
}
