package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

func TestRidgeOLSRecoversLine(t *testing.T) {
	// y = 2x + 1
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewVecDense(5, []float64{3, 5, 7, 9, 11})

	r := NewRidge()
	require.NoError(t, r.Fit(X, y))
	assert.InDelta(t, 2.0, r.Coef()[0], 1e-10)
	assert.InDelta(t, 1.0, r.Intercept(), 1e-10)
	assert.False(t, r.Degenerate())

	pred, err := r.Predict(mat.NewDense(2, 1, []float64{6, 7}))
	require.NoError(t, err)
	assert.InDelta(t, 13.0, pred.AtVec(0), 1e-10)
	assert.InDelta(t, 15.0, pred.AtVec(1), 1e-10)

	score, err := r.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-10)
}

func TestRidgeAcceptsRowVectorTarget(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(1, 3, []float64{2, 4, 6})

	r := NewRidge(WithFitIntercept(false))
	require.NoError(t, r.Fit(X, y))
	assert.InDelta(t, 2.0, r.Coef()[0], 1e-12)
	assert.Equal(t, 0.0, r.Intercept())
}

func TestRidgeShrinksWithLambda(t *testing.T) {
	src := random.New(11)
	X := mat.NewDense(40, 4, random.NormalVector(src, 160, 0, 1))
	y := mat.NewVecDense(40, random.NormalVector(src, 40, 0, 1))

	prevNorm := math.Inf(1)
	for _, lambda := range []float64{0, 0.1, 1, 10, 100} {
		r := NewRidge(WithLambda(lambda), WithFitIntercept(false))
		require.NoError(t, r.Fit(X, y))
		norm := mat.Norm(r.CoefVec(), 2)
		assert.Less(t, norm, prevNorm, "lambda=%g", lambda)
		prevNorm = norm
	}
}

func TestRidgeDegenerateFallback(t *testing.T) {
	// Two identical columns make XᵀX singular at lambda = 0.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewVecDense(4, []float64{2, 4, 6, 8})

	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	errors.SetZerologWarnFunc(nil)
	defer log.SetLogger(log.GetLogger())

	r := NewRidge(WithFitIntercept(false))
	require.NoError(t, r.Fit(X, y))
	assert.True(t, r.Degenerate())

	// minimum-norm solution splits the weight evenly
	coef := r.Coef()
	assert.InDelta(t, 1.0, coef[0], 1e-8)
	assert.InDelta(t, 1.0, coef[1], 1e-8)

	require.Len(t, warnings, 1)
	var smw *errors.SingularMatrixWarning
	assert.True(t, errors.As(warnings[0], &smw))
	assert.Equal(t, "Ridge.Fit", smw.Op)
}

func TestRidgeErrors(t *testing.T) {
	r := NewRidge()

	_, err := r.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = r.Score(mat.NewDense(1, 1, nil), mat.NewVecDense(1, nil))
	assert.True(t, errors.As(err, &nf))

	err = r.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = NewRidge(WithLambda(-1)).Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, nil))
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	require.NoError(t, r.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(3, []float64{1, 2, 3})))
	_, err = r.Predict(mat.NewDense(1, 2, nil))
	assert.True(t, errors.As(err, &dimErr))
}

func TestRidgeLogsFit(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	r := NewRidge(WithLambda(0.5), WithLogger(logger))
	require.NoError(t, r.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(3, []float64{1, 2, 4})))

	assert.True(t, logger.ContainsMessage("Ridge fit completed"))
	assert.True(t, logger.ContainsField(log.LambdaKey, 0.5))
	assert.True(t, logger.ContainsField(log.SamplesKey, 3.0))
}
