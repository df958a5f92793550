package utils

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource is a seeded random number generator
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed falls back to the wall clock.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// SeedSequence hands out seeds base, base+1, base+2, ... for the lifetime
// of one simulation run. It is never rewound.
type SeedSequence struct {
	mu     sync.Mutex
	base   int64
	offset int64
}

// NewSeedSequence creates a sequence starting at base
func NewSeedSequence(base int64) *SeedSequence {
	return &SeedSequence{base: base}
}

// Next returns the next seed and advances the counter
func (s *SeedSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := s.base + s.offset
	s.offset++
	return seed
}

// Issued returns how many seeds have been handed out so far
func (s *SeedSequence) Issued() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Draw returns a uniform draw in [0, 1) with millesimal resolution, taken
// from a fresh source seeded with the next seed of the sequence.
func (s *SeedSequence) Draw() float64 {
	rng := rand.New(rand.NewSource(s.Next()))
	return float64(rng.Intn(1000)) / 1000.0
}
