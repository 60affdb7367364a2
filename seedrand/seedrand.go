// Package seedrand derives stable, reproducible PRNG seeds from a project's
// base seed plus an identifying tuple, and wraps the resulting stream.
//
// Every random decision in the engine is seeded this way: a decision fed an
// identical (base seed, identifiers, stream name) tuple always produces an
// identical outcome, independent of call order or process restart.
package seedrand

import (
	"fmt"
	"math/rand"

	"golang.org/x/crypto/blake2b"
)

// Seed derives a deterministic 64-bit seed from an arbitrary list of parts,
// joined with ":" and hashed with a genuine 8-byte Blake2b digest
// interpreted as a big-endian unsigned integer. This mirrors
// hashlib.blake2b(data, digest_size=8) at every randomness decision point in
// the reference implementation (deterministic_seed in its drum, polyrhythm
// and chord-pattern generators).
func Seed(parts ...any) int64 {
	joined := join(parts)
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(joined))
	sum := h.Sum(nil)
	var out uint64
	for _, b := range sum {
		out = out<<8 | uint64(b)
	}
	return int64(out)
}

// SignedSeed returns exactly what Seed returns for the same parts: the
// digest's 64 bits read as a signed int64. It is kept as a separate name
// for the call sites that seed candidates and segments.
func SignedSeed(parts ...any) int64 {
	return Seed(parts...)
}

func join(parts []any) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += ":"
		}
		s += fmt.Sprint(p)
	}
	return s
}

// Stream wraps a *rand.Rand seeded deterministically from parts, giving
// every call site an independent, locally-owned generator — PRNG state is
// never shared across stream names or generator invocations.
func Stream(parts ...any) *rand.Rand {
	return rand.New(rand.NewSource(Seed(parts...)))
}

// IntRange draws a uniform int in [lo, hi] inclusive from r.
func IntRange(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// XOR combines a base seed with a derived seed, used for lane-level seeding
// where the reference implementation XORs a base seed, a stable hash, and a
// caller-supplied offset rather than hashing all three together.
func XOR(baseSeed int64, parts ...any) int64 {
	return baseSeed ^ Seed(parts...)
}
