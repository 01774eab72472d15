package testutil

import (
	"math/rand"
	"sync"
)

// RNG is a seeded, thread-safe random source.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	b := make([]byte, n)
	r.mu.Lock()
	_, _ = r.rand.Read(b)
	r.mu.Unlock()
	return b
}

// Text returns n bytes of repetitive printable text, which compresses well.
func (r *RNG) Text(n int) []byte {
	const alphabet = "abcdefgh "
	b := make([]byte, n)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range b {
		if i%64 < 48 {
			b[i] = alphabet[i%len(alphabet)]
		} else {
			b[i] = alphabet[r.rand.Intn(len(alphabet))]
		}
	}
	return b
}
