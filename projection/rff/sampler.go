package rff

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/parallel"
	"github.com/YuminosukeSato/lowrank/core/random"
)

// Allocate splits rank kept features across m bandwidths: each receives
// rank/m, and the first rank%m receive one more.
func Allocate(rank, m int) []int {
	alloc := make([]int, m)
	if m == 0 {
		return alloc
	}
	for i := range alloc {
		alloc[i] = rank / m
		if i < rank%m {
			alloc[i]++
		}
	}
	return alloc
}

// candidates is the pool of sampled random features before selection.
// Column j of the pool is cos(x·omega[j] + phase[j]) scaled by scale[j].
type candidates struct {
	omega [][]float64 // one frequency vector of length p per candidate
	phase []float64
	scale []float64
	gamma []float64
}

func (c *candidates) len() int { return len(c.phase) }

// sample draws the candidate pool block by block in bandwidth order.
// Block i holds alloc[i]+delta candidates whose frequencies are N(0, 2γ_i)
// and phases Uniform(0, 2π); each has base scale √(2/D_i).
//
// Every bandwidth draws from its own stream forked from src, one (ω, b) pair
// at a time, so for a fixed src the block for a larger budget extends the
// block for a smaller one.
func sample(src random.Source, p int, gammas []float64, alloc []int, delta int) *candidates {
	c := &candidates{}
	streams := random.Fork(src, len(gammas))
	for i, g := range gammas {
		d := alloc[i] + delta
		if d == 0 {
			continue
		}
		std := math.Sqrt(2 * g)
		s := math.Sqrt(2 / float64(d))
		for j := 0; j < d; j++ {
			c.omega = append(c.omega, random.NormalVector(streams[i], p, 0, std))
			c.phase = append(c.phase, streams[i].Float64()*2*math.Pi)
			c.scale = append(c.scale, s)
			c.gamma = append(c.gamma, g)
		}
	}
	return c
}

// featureMap computes F[i,j] = scale[j]·cos(x_i·omega[j] + phase[j]).
// Rows are computed independently, so the parallel and sequential paths
// give identical results.
func featureMap(X mat.Matrix, omega [][]float64, phase, scale []float64) *mat.Dense {
	n, p := X.Dims()
	k := len(phase)
	F := mat.NewDense(n, k, nil)

	var rowOf func(i int, buf []float64) []float64
	if d, ok := X.(*mat.Dense); ok {
		rowOf = func(i int, _ []float64) []float64 { return d.RawRowView(i) }
	} else {
		rowOf = func(i int, buf []float64) []float64 { return mat.Row(buf, i, X) }
	}

	parallel.ParallelizeWithThreshold(n, parallel.RowThreshold, func(start, end int) {
		buf := make([]float64, p)
		for i := start; i < end; i++ {
			x := rowOf(i, buf)
			fi := F.RawRowView(i)
			for j := 0; j < k; j++ {
				w := omega[j]
				var s float64
				for l, xv := range x {
					s += xv * w[l]
				}
				fi[j] = scale[j] * math.Cos(s+phase[j])
			}
		}
	})
	return F
}
