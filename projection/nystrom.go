package projection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/kernel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Nystrom builds a Nyström approximation on rank training rows drawn
// uniformly without replacement from src.
//
// T = K_AA^{-1/2} is computed from the symmetric eigendecomposition of K_AA.
// Eigenvalues below λ_max·rank·ε are treated as zero (pseudo-inverse).
func Nystrom(K *kernel.Interface, rank int, src random.Source) (*Projection, error) {
	const op = "projection.Nystrom"

	if rank < 1 {
		return nil, errors.NewValidationError("rank", "must be at least 1", rank)
	}
	if src == nil {
		return nil, errors.NewValueError(op, "random source is nil")
	}
	n := K.N()
	active := random.Sample(src, n, rank)
	sort.Ints(active)
	r := len(active)

	Kaa, err := K.Block(active, active)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, 0.5*(Kaa.At(i, j)+Kaa.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, errors.NewSingularMatrixError(op, r, 0, "eigendecomposition did not converge")
	}
	values := eig.Values(nil)
	var V mat.Dense
	eig.VectorsTo(&V)

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	tol := maxVal * float64(r) * 2.220446049250313e-16

	// T = V diag(λ^{-1/2}) Vᵀ
	scaled := mat.DenseCopyOf(&V)
	for j, v := range values {
		s := 0.0
		if v > tol {
			s = 1 / math.Sqrt(v)
		}
		for i := 0; i < r; i++ {
			scaled.Set(i, j, scaled.At(i, j)*s)
		}
	}
	T := mat.NewDense(r, r, nil)
	T.Mul(scaled, V.T())

	C, err := K.Cross(K.X, active)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	G := mat.NewDense(n, r, nil)
	G.Mul(C, T)

	return &Projection{
		Method: "Nystrom",
		Active: active,
		T:      T,
		G:      G,
		kernel: K,
	}, nil
}
