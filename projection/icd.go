package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/kernel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// DefaultICDTolerance stops ICD once every residual diagonal entry is below it.
const DefaultICDTolerance = 1e-10

// ICD computes a pivoted incomplete Cholesky decomposition K ≈ G·Gᵀ.
//
// At each step the row with the largest residual diagonal becomes the next
// pivot (ties go to the lowest index). The decomposition stops early, with a
// RankTruncationWarning, when the largest residual falls below eps.
func ICD(K *kernel.Interface, rank int, eps float64) (*Projection, error) {
	const op = "projection.ICD"

	n := K.N()
	if rank < 1 {
		return nil, errors.NewValidationError("rank", "must be at least 1", rank)
	}
	if eps < 0 || math.IsNaN(eps) {
		return nil, errors.NewValidationError("eps", "must be non-negative", eps)
	}
	if rank > n {
		rank = n
	}

	diag, err := K.Diag()
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	d := append([]float64(nil), diag...)

	G := mat.NewDense(n, rank, nil)
	active := make([]int, 0, rank)
	isActive := make([]bool, n)

	for k := 0; k < rank; k++ {
		j := -1
		best := -1.0
		for i, v := range d {
			if !isActive[i] && v > best {
				best, j = v, i
			}
		}
		if j < 0 || best <= eps {
			break
		}

		col, err := K.Column(j)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		gj := G.RawRowView(j)[:k]
		pivot := math.Sqrt(best)
		for i := 0; i < n; i++ {
			if isActive[i] {
				// Earlier pivots have exactly zero residual.
				continue
			}
			gi := G.RawRowView(i)
			v := col[i]
			for l := 0; l < k; l++ {
				v -= gi[l] * gj[l]
			}
			gi[k] = v / pivot
		}
		G.Set(j, k, pivot)

		for i := 0; i < n; i++ {
			g := G.At(i, k)
			d[i] -= g * g
			if d[i] < 0 {
				d[i] = 0
			}
		}
		d[j] = 0
		isActive[j] = true
		active = append(active, j)
	}

	r := len(active)
	if r == 0 {
		return nil, errors.NewValueError(op, "kernel diagonal is below tolerance; nothing to decompose")
	}
	if r < rank {
		errors.Warn(errors.NewRankTruncationWarning("ICD", rank, r))
		log.GetLogger().Debug("ICD stopped early",
			log.MethodKey, "ICD",
			log.RankKey, rank,
			log.AchievedRankKey, r,
		)
		G = mat.DenseCopyOf(G.Slice(0, n, 0, r))
	}

	// L = G[A,:] is lower triangular, so T = (Lᵀ)⁻¹ is upper triangular.
	Lt := mat.NewTriDense(r, mat.Upper, nil)
	for a, row := range active {
		for k := 0; k <= a; k++ {
			Lt.SetTri(k, a, G.At(row, k))
		}
	}
	var Tinv mat.TriDense
	if err := Tinv.InverseTri(Lt); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, errors.NewSingularMatrixError(op, r, 0, err.Error())
		}
	}

	return &Projection{
		Method: "ICD",
		Active: active,
		T:      mat.DenseCopyOf(&Tinv),
		G:      G,
		kernel: K,
	}, nil
}
