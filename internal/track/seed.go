package track

import (
	"encoding/binary"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// SeedFromString derives a PCG seed pair from a human-readable seed such as
// "daily-2026-10-15". The same string always yields the same pair.
func SeedFromString(s string) (uint64, uint64) {
	sum := blake2b.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}

// NewRand returns a generator seeded from s, or from the runtime's entropy
// when s is empty.
func NewRand(s string) *rand.Rand {
	if s == "" {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(SeedFromString(s)))
}
