// Package kernel implements the exponential (Gaussian) kernel, sums of
// kernels, and a lazily evaluated kernel bound to a training matrix.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/parallel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Func computes the kernel matrix between the rows of X and the rows of Y.
type Func func(X, Y mat.Matrix) (*mat.Dense, error)

// ExponentialE returns K with K[i,j] = exp(-gamma * ||x_i - y_j||^2).
func ExponentialE(X, Y mat.Matrix, gamma float64) (*mat.Dense, error) {
	if !(gamma > 0) || math.IsInf(gamma, 1) {
		return nil, errors.NewValidationError("gamma", "must be positive and finite", gamma)
	}
	xr, xc := X.Dims()
	yr, yc := Y.Dims()
	if xc != yc {
		return nil, errors.NewDimensionError("kernel.Exponential", xc, yc, 1)
	}
	if xr == 0 || yr == 0 {
		return nil, errors.NewModelError("kernel.Exponential", "empty data", errors.ErrEmptyData)
	}

	xd, yd := asDense(X), asDense(Y)
	K := mat.NewDense(xr, yr, nil)
	parallel.ParallelizeWithThreshold(xr, parallel.RowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			xi := xd.RawRowView(i)
			ki := K.RawRowView(i)
			for j := 0; j < yr; j++ {
				ki[j] = math.Exp(-gamma * sqDist(xi, yd.RawRowView(j)))
			}
		}
	})
	return K, nil
}

// Exponential is ExponentialE for callers that have already checked shapes.
// Like gonum's mat package it panics on a dimension mismatch.
func Exponential(X, Y mat.Matrix, gamma float64) *mat.Dense {
	K, err := ExponentialE(X, Y, gamma)
	if err != nil {
		panic(err)
	}
	return K
}

// ExponentialFunc binds gamma into a Func.
func ExponentialFunc(gamma float64) Func {
	return func(X, Y mat.Matrix) (*mat.Dense, error) {
		return ExponentialE(X, Y, gamma)
	}
}

// Sum returns the elementwise sum of the given kernels.
func Sum(kernels ...Func) Func {
	return func(X, Y mat.Matrix) (*mat.Dense, error) {
		if len(kernels) == 0 {
			return nil, errors.NewValueError("kernel.Sum", "no kernels to sum")
		}
		total, err := kernels[0](X, Y)
		if err != nil {
			return nil, err
		}
		for _, k := range kernels[1:] {
			K, err := k(X, Y)
			if err != nil {
				return nil, err
			}
			total.Add(total, K)
		}
		return total, nil
	}
}

// SumOfExponentials is Sum over ExponentialFunc(g) for each g in gammas.
func SumOfExponentials(gammas []float64) Func {
	fs := make([]Func, len(gammas))
	for i, g := range gammas {
		fs[i] = ExponentialFunc(g)
	}
	return Sum(fs...)
}

func sqDist(a, b []float64) float64 {
	var s float64
	for k, v := range a {
		d := v - b[k]
		s += d * d
	}
	return s
}

// asDense returns m itself when it is already a *mat.Dense.
func asDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}
