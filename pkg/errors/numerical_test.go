package errors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("beta", []float64{1, -2, 3}, 0))

	err := CheckNumericalStability("beta", []float64{1, math.NaN()}, 2)
	var instab *NumericalInstabilityError
	assert.True(t, As(err, &instab))
	assert.Equal(t, 2, instab.Iteration)
}

func TestCheckMatrix(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.NoError(t, CheckMatrix("G", m, 2, 2, 0))

	m.Set(1, 0, math.Inf(1))
	assert.Error(t, CheckMatrix("G", m, 2, 2, 0))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2, 1))
	assert.Equal(t, 1.0, SafeDivide(4, 0, 1))
}
