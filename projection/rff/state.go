package rff

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// State is the immutable snapshot produced by a successful Fit. Accessors
// return copies, so callers cannot alter a fitted model through them.
type State struct {
	omega      [][]float64 // rank frequency vectors of length nFeatures
	phase      []float64
	scale      []float64
	gammas     []float64 // source bandwidth of each kept column
	g          *mat.Dense
	beta       *mat.VecDense
	degenerate bool
	nFeatures  int
}

// Rank returns the number of kept features.
func (s *State) Rank() int { return len(s.phase) }

// NFeatures returns the input dimension seen at Fit.
func (s *State) NFeatures() int { return s.nFeatures }

// Omega returns the p×rank frequency matrix.
func (s *State) Omega() *mat.Dense {
	W := mat.NewDense(s.nFeatures, s.Rank(), nil)
	for j, w := range s.omega {
		W.SetCol(j, w)
	}
	return W
}

// Phase returns the per-feature phase offsets.
func (s *State) Phase() []float64 { return append([]float64(nil), s.phase...) }

// Scale returns the per-feature multiplier applied after the cosine.
func (s *State) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Gammas returns the bandwidth each kept feature was drawn for.
func (s *State) Gammas() []float64 { return append([]float64(nil), s.gammas...) }

// G returns the n×rank training feature matrix.
func (s *State) G() *mat.Dense { return mat.DenseCopyOf(s.g) }

// Beta returns the regression weights.
func (s *State) Beta() *mat.VecDense { return mat.VecDenseCopyOf(s.beta) }

// Degenerate reports whether the ridge solve fell back to a pseudo-inverse.
func (s *State) Degenerate() bool { return s.degenerate }

// wireState is the gob representation of a fitted model: its hyperparameters
// and its State.
type wireState struct {
	Rank       int
	GammaRange []float64
	Delta      int
	Lambda     float64
	Normalize  bool

	NFeatures  int
	Omega      [][]float64
	Phase      []float64
	Scale      []float64
	Gammas     []float64
	GRows      int
	GData      []float64
	Beta       []float64
	Degenerate bool
}

func (s *State) wire() wireState {
	rows, _ := s.g.Dims()
	return wireState{
		NFeatures:  s.nFeatures,
		Omega:      s.omega,
		Phase:      s.phase,
		Scale:      s.scale,
		Gammas:     s.gammas,
		GRows:      rows,
		GData:      mat.DenseCopyOf(s.g).RawMatrix().Data,
		Beta:       mat.Col(nil, 0, s.beta),
		Degenerate: s.degenerate,
	}
}

func (w *wireState) state() (*State, error) {
	k := len(w.Phase)
	if k == 0 || len(w.Scale) != k || len(w.Gammas) != k || len(w.Omega) != k || len(w.Beta) != k {
		return nil, errors.NewValueError("rff.Load", "inconsistent snapshot lengths")
	}
	for _, om := range w.Omega {
		if len(om) != w.NFeatures {
			return nil, errors.NewDimensionError("rff.Load", w.NFeatures, len(om), 1)
		}
	}
	if w.GRows <= 0 || len(w.GData) != w.GRows*k {
		return nil, errors.NewValueError("rff.Load", "inconsistent feature matrix")
	}
	return &State{
		omega:      w.Omega,
		phase:      w.Phase,
		scale:      w.Scale,
		gammas:     w.Gammas,
		g:          mat.NewDense(w.GRows, k, w.GData),
		beta:       mat.NewVecDense(k, w.Beta),
		degenerate: w.Degenerate,
		nFeatures:  w.NFeatures,
	}, nil
}
