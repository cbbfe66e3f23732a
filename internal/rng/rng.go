package rng

import (
	"math/rand"
	"time"
)

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seeded is a non-cryptographic generator backed by math/rand
// The outcome draw is cooperative, so uniformity matters and unpredictability does not
type Seeded struct {
	r *rand.Rand
}

// New returns a generator seeded with seed
func New(seed int64) *Seeded {
	return &Seeded{
		r: rand.New(rand.NewSource(seed)), // nolint:gosec
	}
}

// NewFromTime returns a generator seeded with the current time
func NewFromTime() *Seeded {
	return New(time.Now().UnixNano())
}

// Intn returns a random number from 0 <= x < n
func (s *Seeded) Intn(n int) int {
	return s.r.Intn(n)
}

// Float64 returns a random number from 0.0 <= x < 1.0
func (s *Seeded) Float64() float64 {
	return s.r.Float64()
}
