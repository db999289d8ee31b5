// Package random holds the injectable random source used by the randomized
// low-rank methods and helpers that draw vectors and index sets from it.
package random

import (
	"math/rand/v2"
)

// Source is the minimal random source the models consume.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// seedStream separates PCG streams seeded by this package from other PCG users.
const seedStream = 0x9e3779b97f4a7c15

// New returns a deterministic generator for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), seedStream))
}

// NewNondeterministic returns a generator seeded from the runtime's entropy.
func NewNondeterministic() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Fork derives n independent generators from src. Child i depends only on
// the state of src and on i, so drawing more values from one child never
// shifts another.
func Fork(src Source, n int) []*rand.Rand {
	children := make([]*rand.Rand, n)
	for i := range children {
		hi := uint64(src.Float64() * (1 << 53))
		lo := uint64(src.Float64() * (1 << 53))
		children[i] = rand.New(rand.NewPCG(hi<<11^lo, uint64(i)^seedStream))
	}
	return children
}

// NormalVector makes a vec filled with normal random floats.
func NormalVector(src Source, size int, mean, stdDev float64) []float64 {
	ret := make([]float64, size)
	for i := range ret {
		ret[i] = src.NormFloat64()*stdDev + mean
	}
	return ret
}

// UniformVector makes a vec filled with uniform random floats in [low, high).
func UniformVector(src Source, size int, low, high float64) []float64 {
	ret := make([]float64, size)
	scale := high - low
	for i := range ret {
		ret[i] = src.Float64()*scale + low
	}
	return ret
}

// Intn returns a uniform integer in [0, n) drawn from src.
func Intn(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Perm returns a random permutation of [0, n) (Fisher-Yates).
func Perm(src Source, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := Intn(src, i+1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Sample draws k distinct indices from [0, n) without replacement.
// It returns all of [0, n) in random order when k >= n.
func Sample(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	return Perm(src, n)[:k]
}
