// SPDX-License-Identifier: MIT

// Package rng builds the PCG streams the integrators sample from.
//
// A run is addressed by its seed; each iteration and each step inside it is
// addressed by a pair of counters. Derive turns (seed, iteration, step) into a
// PCG state through SplitMix64 finalizers, so a step's draws depend only on
// its own address, and the worker count only changes the order in which
// steps run.
//
// A *rand.Rand is owned by exactly one goroutine. Derive a fresh stream for
// each step rather than passing one around.
package rng

import "math/rand/v2"

// DefaultSeed replaces a zero seed, so an unset seed still names one run.
const DefaultSeed uint64 = 1

// splitmix constants (Vigna 2014); golden is the Weyl increment.
const (
	golden = 0x9e3779b97f4a7c15
	mixA   = 0xbf58476d1ce4e5b9
	mixB   = 0x94d049bb133111eb
)

// normalize applies the seed==0 policy.
func normalize(seed uint64) uint64 {
	if seed == 0 {
		return DefaultSeed
	}
	return seed
}

// New returns a deterministic *rand.Rand backed by PCG.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the seed is used verbatim.
//
// Complexity: O(1).
func New(seed uint64) *rand.Rand {
	var s = normalize(seed)
	return rand.New(rand.NewPCG(s, Mix(s, golden)))
}

// Mix folds a stream identifier into a parent seed with a SplitMix64 finalizer.
// Small changes in either input produce large, well-distributed output changes.
//
// Complexity: O(1).
func Mix(parent, stream uint64) uint64 {
	var x uint64
	x = parent ^ (stream + golden)
	x += golden
	x = (x ^ (x >> 30)) * mixA
	x = (x ^ (x >> 27)) * mixB
	x ^= x >> 31
	return x
}

// Derive returns the stream owned by step `step` of iteration `iteration`
// under the base seed. Calling it twice with the same arguments yields two
// generators that produce the same sequence.
//
// Complexity: O(1).
func Derive(seed uint64, iteration, step int) *rand.Rand {
	var s = normalize(seed)
	var hi = Mix(s, uint64(iteration))
	var lo = Mix(hi, uint64(step))
	return rand.New(rand.NewPCG(hi, lo))
}
