package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// MaxCondition は正規方程式をCholeskyで解く際に許容する条件数の上限
// これを超える場合はSVDによる擬似逆行列へフォールバックする
const MaxCondition = 1e10

// Solution はリッジ方程式の解
type Solution struct {
	Beta       *mat.VecDense
	Degenerate bool    // SVDフォールバックを使用した場合 true
	Condition  float64 // (GᵀG + λI) の推定条件数。分解に失敗した場合は +Inf
}

// SolveRidge は (GᵀG + λI) β = Gᵀy を解く
//
// まずCholesky分解を試み、分解できないか条件数が MaxCondition を超える場合は
// β = V diag(s/(s²+λ)) Uᵀy によるSVD解に切り替え、degenerate=true を返す。
// λ = 0 のとき s ≤ s_max·max(n,k)·ε の特異値は擬似逆行列として 0 扱いにする。
func SolveRidge(G mat.Matrix, y *mat.VecDense, lambda float64) (*mat.VecDense, bool, error) {
	sol, err := solveRidge(G, y, lambda)
	if err != nil {
		return nil, false, err
	}
	return sol.Beta, sol.Degenerate, nil
}

func solveRidge(G mat.Matrix, y *mat.VecDense, lambda float64) (*Solution, error) {
	const op = "linear.SolveRidge"

	n, k := G.Dims()
	if n == 0 || k == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError(op, n, y.Len(), 0)
	}
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return nil, errors.NewValidationError("lambda", "must be a finite non-negative number", lambda)
	}
	if err := errors.CheckMatrix(op, G, n, k, 0); err != nil {
		return nil, err
	}

	// A = GᵀG + λI
	A := mat.NewSymDense(k, nil)
	A.SymOuterK(1, G.T())
	for i := 0; i < k; i++ {
		A.SetSym(i, i, A.At(i, i)+lambda)
	}

	var Gty mat.VecDense
	Gty.MulVec(G.T(), y)

	var chol mat.Cholesky
	if chol.Factorize(A) {
		cond := chol.Cond()
		if cond <= MaxCondition {
			beta := mat.NewVecDense(k, nil)
			if err := chol.SolveVecTo(beta, &Gty); err == nil && finite(beta) {
				return &Solution{Beta: beta, Condition: cond}, nil
			}
		}
		return solveSVD(G, y, lambda, cond)
	}
	return solveSVD(G, y, lambda, math.Inf(1))
}

// solveSVD は G の特異値分解からリッジ解を計算する
func solveSVD(G mat.Matrix, y *mat.VecDense, lambda, cond float64) (*Solution, error) {
	const op = "linear.SolveRidge"

	n, k := G.Dims()
	var svd mat.SVD
	if !svd.Factorize(G, mat.SVDThin) {
		return nil, errors.NewSingularMatrixError(op, k, lambda, "SVD did not converge")
	}
	s := svd.Values(nil)
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	cutoff := 0.0
	if lambda == 0 && len(s) > 0 {
		cutoff = s[0] * float64(max(n, k)) * eps
	}

	// z = diag(s/(s²+λ)) Uᵀy
	z := mat.NewVecDense(len(s), nil)
	z.MulVec(U.T(), y)
	for i, si := range s {
		if si <= cutoff || si == 0 {
			z.SetVec(i, 0)
			continue
		}
		z.SetVec(i, z.AtVec(i)*si/(si*si+lambda))
	}

	beta := mat.NewVecDense(k, nil)
	beta.MulVec(&V, z)
	if !finite(beta) {
		return nil, errors.NewSingularMatrixError(op, k, lambda, "non-finite weights")
	}
	return &Solution{Beta: beta, Degenerate: true, Condition: cond}, nil
}

// eps はfloat64の計算機イプシロン
const eps = 2.220446049250313e-16

func finite(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
