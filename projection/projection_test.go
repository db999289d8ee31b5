package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/kernel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

func uniformMatrix(r, c int, seed int64) *mat.Dense {
	return mat.NewDense(r, c, random.UniformVector(random.New(seed), r*c, 0, 1))
}

func newInterface(t *testing.T, X *mat.Dense, gammas ...float64) *kernel.Interface {
	t.Helper()
	ki, err := kernel.NewInterface(X, kernel.SumOfExponentials(gammas))
	require.NoError(t, err)
	return ki
}

func frobeniusDiff(a, b mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(a, b)
	return mat.Norm(&d, 2)
}

func TestICDFullRankReconstruction(t *testing.T) {
	X := uniformMatrix(15, 2, 1)
	ki := newInterface(t, X, 10)

	p, err := ICD(ki, 15, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Rank())
	assert.Len(t, p.Active, 15)

	full, err := ki.Full()
	require.NoError(t, err)
	var approx mat.Dense
	approx.Mul(p.G, p.G.T())
	assert.Less(t, frobeniusDiff(full, &approx), 1e-8)

	G, err := p.Transform(X)
	require.NoError(t, err)
	assert.Less(t, frobeniusDiff(p.G, G), 1e-6)
}

func TestICDPivotsAreLowerTriangular(t *testing.T) {
	X := uniformMatrix(30, 3, 2)
	p, err := ICD(newInterface(t, X, 1), 8, DefaultICDTolerance)
	require.NoError(t, err)

	for a, row := range p.Active {
		for k := a + 1; k < p.Rank(); k++ {
			assert.Equal(t, 0.0, p.G.At(row, k))
		}
		assert.Greater(t, p.G.At(row, a), 0.0)
	}
}

func TestICDErrorDecreasesWithRank(t *testing.T) {
	X := uniformMatrix(40, 2, 3)
	ki := newInterface(t, X, 0.5, 4)
	full, err := ki.Full()
	require.NoError(t, err)

	prev := math.Inf(1)
	for _, rank := range []int{2, 5, 10, 20} {
		p, err := ICD(ki, rank, DefaultICDTolerance)
		require.NoError(t, err)
		var approx mat.Dense
		approx.Mul(p.G, p.G.T())
		e := frobeniusDiff(full, &approx)
		assert.LessOrEqual(t, e, prev, "rank %d", rank)
		prev = e
	}
}

func TestICDTruncatesOnDuplicateRows(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0.1, 0.1, 0.1, 0.1})
	p, err := ICD(newInterface(t, X, 1), 3, 1e-8)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Rank())
}

func TestICDValidation(t *testing.T) {
	ki := newInterface(t, uniformMatrix(5, 2, 4), 1)
	_, err := ICD(ki, 0, 0)
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
	_, err = ICD(ki, 2, -1)
	assert.True(t, errors.As(err, &vErr))
}

func TestNystrom(t *testing.T) {
	X := uniformMatrix(25, 2, 5)
	ki := newInterface(t, X, 2)

	p, err := Nystrom(ki, 6, random.New(7))
	require.NoError(t, err)
	assert.Equal(t, 6, p.Rank())
	assert.Len(t, p.Active, 6)

	G, err := p.Transform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(p.G, G))

	// On the active rows the approximation reproduces K exactly.
	Kaa, err := ki.Block(p.Active, p.Active)
	require.NoError(t, err)
	var approx mat.Dense
	approx.Mul(p.G, p.G.T())
	for a, i := range p.Active {
		for b, j := range p.Active {
			assert.InDelta(t, Kaa.At(a, b), approx.At(i, j), 1e-8)
		}
	}

	again, err := Nystrom(ki, 6, random.New(7))
	require.NoError(t, err)
	assert.Equal(t, p.Active, again.Active)
}

func TestNystromFullRankIsExact(t *testing.T) {
	X := uniformMatrix(10, 2, 6)
	ki := newInterface(t, X, 10)
	p, err := Nystrom(ki, 10, random.New(1))
	require.NoError(t, err)

	full, err := ki.Full()
	require.NoError(t, err)
	var approx mat.Dense
	approx.Mul(p.G, p.G.T())
	assert.Less(t, frobeniusDiff(full, &approx), 1e-8)
}

func TestTransformErrors(t *testing.T) {
	var p *Projection
	_, err := p.Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	X := uniformMatrix(5, 2, 8)
	fitted, err := ICD(newInterface(t, X, 1), 2, 0)
	require.NoError(t, err)
	_, err = fitted.Transform(uniformMatrix(3, 3, 9))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
