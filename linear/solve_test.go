package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

func TestSolveRidgeMatchesNormalEquations(t *testing.T) {
	src := random.New(3)
	G := mat.NewDense(30, 5, random.NormalVector(src, 150, 0, 1))
	y := mat.NewVecDense(30, random.NormalVector(src, 30, 0, 1))
	lambda := 0.3

	beta, degenerate, err := SolveRidge(G, y, lambda)
	require.NoError(t, err)
	assert.False(t, degenerate)

	// (GᵀG + λI) β should equal Gᵀy
	var A mat.Dense
	A.Mul(G.T(), G)
	for i := 0; i < 5; i++ {
		A.Set(i, i, A.At(i, i)+lambda)
	}
	var lhs, rhs mat.VecDense
	lhs.MulVec(&A, beta)
	rhs.MulVec(G.T(), y)
	assert.True(t, mat.EqualApprox(&lhs, &rhs, 1e-10))
}

func TestSolveRidgeSVDAgreesWithCholesky(t *testing.T) {
	src := random.New(4)
	G := mat.NewDense(20, 4, random.NormalVector(src, 80, 0, 1))
	y := mat.NewVecDense(20, random.NormalVector(src, 20, 0, 1))

	for _, lambda := range []float64{0, 0.01, 5} {
		chol, degenerate, err := SolveRidge(G, y, lambda)
		require.NoError(t, err)
		require.False(t, degenerate)

		sol, err := solveSVD(G, y, lambda, math.Inf(1))
		require.NoError(t, err)
		assert.True(t, sol.Degenerate)
		assert.True(t, mat.EqualApprox(chol, sol.Beta, 1e-9), "lambda=%g", lambda)
	}
}

func TestSolveRidgeUnderdetermined(t *testing.T) {
	// More columns than rows: GᵀG is singular at lambda = 0.
	src := random.New(5)
	G := mat.NewDense(3, 6, random.NormalVector(src, 18, 0, 1))
	y := mat.NewVecDense(3, []float64{1, -1, 2})

	beta, degenerate, err := SolveRidge(G, y, 0)
	require.NoError(t, err)
	assert.True(t, degenerate)

	// the minimum-norm solution interpolates
	var fit mat.VecDense
	fit.MulVec(G, beta)
	assert.True(t, mat.EqualApprox(&fit, y, 1e-8))
}

func TestSolveRidgeErrors(t *testing.T) {
	G := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	_, _, err := SolveRidge(G, mat.NewVecDense(3, nil), 0)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, _, err = SolveRidge(G, mat.NewVecDense(2, nil), math.NaN())
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 1})
	_, _, err = SolveRidge(bad, mat.NewVecDense(2, nil), 0)
	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &numErr))
}
