package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

func vec(v ...float64) *mat.VecDense { return mat.NewVecDense(len(v), v) }

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: vec(1, 2, 3, 4, 5),
			yPred: vec(1, 2, 3, 4, 5),
			want:  0,
		},
		{
			name:  "simple case",
			yTrue: vec(1, 2, 3, 4),
			yPred: vec(1.5, 2.5, 2.5, 3.5),
			want:  0.25, // ((0.5)^2 + (0.5)^2 + (-0.5)^2 + (-0.5)^2) / 4
		},
		{
			name:  "larger errors",
			yTrue: vec(10, 20, 30),
			yPred: vec(12, 18, 33),
			want:  17.0 / 3.0,
		},
		{
			name:    "dimension mismatch",
			yTrue:   vec(1, 2, 3),
			yPred:   vec(1, 2),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)

			rmse, err := RMSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, math.Sqrt(tt.want), rmse, 1e-10)

			sse, err := SSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want*float64(tt.yTrue.Len()), sse, 1e-10)
		})
	}
}

func TestMAE(t *testing.T) {
	got, err := MAE(vec(1, 2, 3), vec(2, 2, 1))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestResidualStd(t *testing.T) {
	t.Run("constant offset is ignored", func(t *testing.T) {
		got, err := ResidualStd(vec(1, 2, 3, 4), vec(2, 3, 4, 5))
		require.NoError(t, err)
		assert.InDelta(t, 0.0, got, 1e-12)
	})

	t.Run("population variance", func(t *testing.T) {
		// residuals 1, -1, 1, -1: mean 0, population variance 1
		got, err := ResidualStd(vec(1, 0, 1, 0), vec(0, 1, 0, 1))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 1e-12)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := ResidualStd(vec(1, 2), vec(1))
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{name: "perfect", yTrue: vec(1, 2, 3, 4), yPred: vec(1, 2, 3, 4), want: 1},
		{name: "mean prediction", yTrue: vec(1, 2, 3, 4), yPred: vec(2.5, 2.5, 2.5, 2.5), want: 0},
		{name: "partial", yTrue: vec(3, -0.5, 2, 7), yPred: vec(2.5, 0, 2, 8), want: 0.9486081370449679},
		{name: "no variance", yTrue: vec(1, 1, 1), yPred: vec(1, 2, 3), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestExplainedVarianceScore(t *testing.T) {
	got, err := ExplainedVarianceScore(vec(3, -0.5, 2, 7), vec(2.5, 0, 2, 8))
	require.NoError(t, err)
	assert.InDelta(t, 0.9571734475374732, got, 1e-12)

	// a constant offset does not lower explained variance
	got, err = ExplainedVarianceScore(vec(1, 2, 3), vec(11, 12, 13))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)

}

func TestExplainedVarianceScore_ConstantTarget(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	errors.SetZerologWarnFunc(nil)
	defer log.SetLogger(log.GetLogger())

	got, err := ExplainedVarianceScore(vec(2, 2), vec(1, 3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = ExplainedVarianceScore(vec(2, 2), vec(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got, "a constant residual explains everything")

	require.Len(t, warnings, 2)
	var w *errors.UndefinedMetricWarning
	assert.True(t, errors.As(warnings[0], &w))
	assert.Equal(t, "ExplainedVarianceScore", w.Metric)
}

func BenchmarkResidualStd(b *testing.B) {
	n := 10000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%7))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ResidualStd(yTrue, yPred)
	}
}
