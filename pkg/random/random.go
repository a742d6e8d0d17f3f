// Package random provides the random draws shared by every stochastic
// transform.
//
// Nothing in augmedical touches a process-wide generator. Each call that
// needs randomness receives a [Source], so data loaders can give every
// worker (or every sample) its own stream and runs stay reproducible from a
// single seed.
//
// # Usage
//
//	rng := random.New(42)
//	f := random.Float(rng, 0.1, 0.9)       // uniform in [0.1, 0.9)
//	k := random.Int(rng, 1, 3)             // uniform in {1, 2, 3}
//	active := random.Bernoulli(rng, 0.3)   // true 30% of the time
//
// For parallel loading derive one generator per worker:
//
//	rng := random.ForWorker(seed, workerID)
package random

import "math/rand/v2"

// Source is the minimal generator interface the transforms need.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// golden is the 64-bit golden ratio used to spread worker seeds apart.
const golden = 0x9e3779b97f4a7c15

// New returns a PCG generator seeded deterministically from seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// ForWorker returns a generator for the given worker or sample index.
// Streams for different indices are independent; the same (seed, worker)
// pair always yields the same stream.
func ForWorker(seed uint64, worker int) *rand.Rand {
	s := mix(seed + uint64(worker+1)*golden)
	return rand.New(rand.NewPCG(s, mix(s^0xdeadbeef)))
}

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float returns a uniform value in [lo, hi). lo == hi returns lo.
func Float(src Source, lo, hi float64) float64 {
	return src.Float64()*(hi-lo) + lo
}

// Int returns a uniform integer in the closed interval [lo, hi].
// If hi < lo it returns lo.
func Int(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Index returns a uniform index in [0, n).
func Index(src Source, n int) int {
	return src.IntN(n)
}

// Bernoulli performs one trial with success probability p. Exactly one
// value is drawn regardless of p, so p = 0 never succeeds and p = 1 always
// does without changing how much of the stream is consumed.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Coin returns true with probability one half.
func Coin(src Source) bool {
	return src.Float64() >= 0.5
}
