package experiment

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

func row(method string, rank, iteration int, lambda, va, te float64) Result {
	return Result{
		Dataset: "synthetic", N: 100, Method: method, Rank: rank, Iteration: iteration,
		Lambda: lambda, RMSEValidation: va, RMSETest: te,
	}
}

var curveRows = []Result{
	row(MethodRFF, 10, 0, 0, 0.50, 0.55),
	row(MethodRFF, 10, 1, 0, 0.30, 0.35),  // mean va 0.40 at lambda 0
	row(MethodRFF, 10, 0, 0.1, 0.35, 0.60), // mean va 0.35 at lambda 0.1
	row(MethodRFF, 10, 1, 0.1, 0.35, 0.40),
	row(MethodRFF, 5, 0, 0, 0.60, 0.70),
	row(MethodICD, 10, 0, 0, 0.20, 0.25),
	row(MethodICD, 10, 0, 1, 0.20, 0.90), // tie: the smaller lambda wins
}

func TestSummarize(t *testing.T) {
	summaries := Summarize(curveRows)
	require.Len(t, summaries, 2)

	assert.Equal(t, MethodICD, summaries[0].Method)
	assert.Equal(t, 0.0, summaries[0].Best.Lambda, "ties keep the earliest row")
	assert.Equal(t, 2, summaries[0].Rows)

	assert.Equal(t, MethodRFF, summaries[1].Method)
	assert.Equal(t, 0.30, summaries[1].Best.RMSEValidation)
	assert.Equal(t, 5, summaries[1].Rows)

	assert.Empty(t, Summarize(nil))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summarize(curveRows)))
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "LAMBDA")
	assert.Contains(t, out, MethodICD)
	assert.Contains(t, out, "0.300000")
}

func TestRMSECurves(t *testing.T) {
	curves := RMSECurves(curveRows)
	require.Len(t, curves, 2)

	assert.Equal(t, Curve{Method: MethodICD, Ranks: []int{10}, RMSE: []float64{0.25}}, curves[0])

	rffCurve := curves[1]
	assert.Equal(t, MethodRFF, rffCurve.Method)
	assert.Equal(t, []int{5, 10}, rffCurve.Ranks)
	assert.InDelta(t, 0.70, rffCurve.RMSE[0], 1e-12)
	assert.InDelta(t, 0.50, rffCurve.RMSE[1], 1e-12, "lambda 0.1 has the lower mean validation RMSE")
}

func TestPlotCurves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmse.png")
	require.NoError(t, PlotCurves(RMSECurves(curveRows), "synthetic", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = PlotCurves(nil, "empty", path)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
