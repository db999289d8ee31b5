package experiment

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleResult = Result{
	Dataset: "synthetic", N: 100, Method: MethodRFF, Rank: 30, Iteration: 2,
	Lambda: 1e-3, GammaMin: 0.125, GammaMax: 8, P: 7,
	EvarTrain: 0.99, EvarTest: 0.95, RMSETrain: 0.01, RMSEValidation: 0.02, RMSETest: 0.025,
}

func TestResultWriter(t *testing.T) {
	var buf bytes.Buffer
	rw, err := NewResultWriter(&buf)
	require.NoError(t, err)
	assert.Equal(t, "dataset,n,method,rank,iteration,lambda,gmin,gmax,p,evar_tr,evar,RMSE_tr,RMSE_va,RMSE\n", buf.String())

	require.NoError(t, rw.Write(sampleResult))
	assert.Equal(t, 1, rw.Rows())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "rows are flushed on every write")
	assert.Equal(t, "synthetic,100,RFF,30,2,0.001,0.125,8,7,0.99,0.95,0.01,0.02,0.025", lines[1])

	results, err := ReadResults(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Result{sampleResult}, results)
}

func TestReadResults_Errors(t *testing.T) {
	_, err := ReadResults(strings.NewReader(""))
	assert.Error(t, err)

	header := strings.Join(Header, ",") + "\n"
	_, err = ReadResults(strings.NewReader(header + "synthetic,100,RFF\n"))
	assert.Error(t, err)

	bad := sampleResult.Record()
	bad[3] = "thirty"
	_, err = ReadResults(strings.NewReader(header + strings.Join(bad, ",") + "\n"))
	assert.Error(t, err)

	results, err := ReadResults(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)

	first, err := OutputPath(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-3-7", "results_0.csv"), first)

	require.NoError(t, os.WriteFile(first, nil, 0o644))
	second, err := OutputPath(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-3-7", "results_1.csv"), second)
}
