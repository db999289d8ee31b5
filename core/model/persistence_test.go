package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Rank  int
	Omega []float64
	Label string
}

func TestSaveLoadWriterRoundTrip(t *testing.T) {
	in := snapshot{Rank: 3, Omega: []float64{0.5, -1.25, 2}, Label: "rff"}

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(&in, &buf))

	var out snapshot
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.Equal(t, in, out)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	in := snapshot{Rank: 1, Omega: []float64{1}}

	require.NoError(t, SaveModel(&in, path))
	var out snapshot
	require.NoError(t, LoadModel(&out, path))
	assert.Equal(t, in, out)
}

func TestLoadModelErrors(t *testing.T) {
	var out snapshot
	assert.Error(t, LoadModel(&out, filepath.Join(t.TempDir(), "missing.gob")))
	assert.Error(t, LoadModelFromReader(&out, bytes.NewBufferString("not gob")))
}
