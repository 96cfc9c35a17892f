package dice

import (
	"crypto/rand"
	"encoding/binary"
)

const (
	lcgA uint64 = 48_271
	lcgM uint64 = 2_147_483_647
)

// Rng is a deterministic multiplicative congruential stream
// (seed' = 48271 * seed mod 2^31-1).
//
// Rng is a handle: copies share one seed cell, so passing an Rng by value
// down a roller tree still advances a single logical stream. Use Fork for an
// independent stream.
//
// Invariant: the seed is always in [1, 2^31-2].
// Rng is not safe for concurrent use.
type Rng struct {
	seed *uint64
}

// Seeded returns a stream starting from seed. The seed is reduced modulo
// 2^31-1; a zero result is replaced by 1.
//
// Postcondition: Two streams created with the same seed produce the same sequence.
func Seeded(seed uint64) Rng {
	s := seed % lcgM
	if s == 0 {
		s = 1
	}
	return Rng{seed: &s}
}

// NewRng returns a stream seeded from crypto/rand.
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func NewRng() Rng {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return Seeded(binary.LittleEndian.Uint64(b[:]))
}

// Next advances the stream and returns the new seed.
//
// Precondition: r must come from Seeded or NewRng.
func (r Rng) Next() uint64 {
	if r.seed == nil {
		panic("dice: Rng used without a seed; construct it with Seeded or NewRng")
	}
	*r.seed = (lcgA * *r.seed) % lcgM
	return *r.seed
}

// NextIndex returns an index in [0, n).
//
// Precondition: n > 0. Panics with "dice: NextIndex called with n <= 0" otherwise.
func (r Rng) NextIndex(n int) int {
	if n <= 0 {
		panic("dice: NextIndex called with n <= 0")
	}
	return int((r.Next() - 1) % uint64(n))
}

// Intn is NextIndex under the name math/rand users expect.
func (r Rng) Intn(n int) int { return r.NextIndex(n) }

// State returns the current seed without advancing the stream.
func (r Rng) State() uint64 { return *r.seed }

// Fork returns an independent stream starting at r's current state.
func (r Rng) Fork() Rng { return Seeded(*r.seed) }
