package rff

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// zeroNormTol is the squared-norm ratio below which a candidate's component
// orthogonal to the already selected columns is treated as zero.
const zeroNormTol = 1e-20

// selectGreedy picks k columns of Z by orthogonal matching pursuit against y.
//
// At each step the candidate whose component orthogonal to the selected
// columns has the largest absolute normalized correlation with the residual
// is chosen; ties go to the lowest index. Candidates with a numerically zero
// orthogonal component are skipped. When no usable candidate remains, the
// remaining slots are filled with unselected candidates in sampling order.
// The returned indices are in selection order.
func selectGreedy(Z *mat.Dense, y *mat.VecDense, k int) []int {
	n, c := Z.Dims()
	if k >= c {
		all := make([]int, c)
		for j := range all {
			all[j] = j
		}
		return all
	}

	R := mat.DenseCopyOf(Z)
	res := mat.VecDenseCopyOf(y)
	selected := make([]int, 0, k)
	used := make([]bool, c)

	orig := columnSqNorms(Z)
	corr := mat.NewVecDense(c, nil)
	proj := mat.NewVecDense(c, nil)
	q := mat.NewVecDense(n, nil)

	for len(selected) < k {
		norms := columnSqNorms(R)
		corr.MulVec(R.T(), res)

		best, bestScore := -1, -1.0
		for j := 0; j < c; j++ {
			if used[j] || orig[j] == 0 || norms[j] <= zeroNormTol*orig[j] {
				continue
			}
			score := math.Abs(corr.AtVec(j)) / math.Sqrt(norms[j])
			if score > bestScore {
				best, bestScore = j, score
			}
		}
		if best < 0 {
			break
		}

		used[best] = true
		selected = append(selected, best)

		// q = unit orthogonal component of the chosen candidate
		q.ScaleVec(1/math.Sqrt(norms[best]), R.ColView(best))

		// res -= q qᵀ res; R -= q (qᵀ R)
		res.AddScaledVec(res, -mat.Dot(q, res), q)
		proj.MulVec(R.T(), q)
		R.RankOne(R, -1, q, proj)
	}

	for j := 0; j < c && len(selected) < k; j++ {
		if !used[j] {
			used[j] = true
			selected = append(selected, j)
		}
	}
	return selected
}

func columnSqNorms(A *mat.Dense) []float64 {
	r, c := A.Dims()
	out := make([]float64, c)
	for i := 0; i < r; i++ {
		row := A.RawRowView(i)
		for j, v := range row {
			out[j] += v * v
		}
	}
	return out
}
