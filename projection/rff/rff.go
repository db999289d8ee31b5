// Package rff implements low-rank kernel ridge regression with random Fourier
// features.
//
// The model approximates a sum of exponential kernels
//
//	K(x, x') = Σ_γ exp(-γ‖x − x'‖²)
//
// by drawing random frequencies for each bandwidth γ, keeps rank of the
// sampled features (chosen greedily against the target when look-ahead
// candidates are drawn), and fits ridge regression weights in that feature
// space. Predictions are Transform(X)·β.
package rff

import (
	"context"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/model"
	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/linear"
	"github.com/YuminosukeSato/lowrank/metrics"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// Defaults used by New.
const (
	DefaultGamma     = 1.0
	DefaultDelta     = 10
	DefaultLambda    = 0.0
	DefaultNormalize = true
)

// RFF is a random Fourier features regressor.
//
// A model is not safe for concurrent Fit. After Fit, Transform and Predict
// only read the immutable State and may be called concurrently.
type RFF struct {
	model.BaseEstimator

	rank       int
	gammaRange []float64
	delta      int
	lambda     float64
	seed       int64
	hasSeed    bool
	src        Source
	normalize  bool
	logger     log.Logger

	state *State
}

// New creates an unfitted model keeping rank features.
func New(rank int, opts ...Option) *RFF {
	r := &RFF{
		rank:       rank,
		gammaRange: []float64{DefaultGamma},
		delta:      DefaultDelta,
		lambda:     DefaultLambda,
		normalize:  DefaultNormalize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RFF) validate() error {
	if r.rank < 1 {
		return errors.NewValidationError("rank", "must be at least 1", r.rank)
	}
	if len(r.gammaRange) == 0 {
		return errors.NewValidationError("gamma_range", "must not be empty", r.gammaRange)
	}
	for _, g := range r.gammaRange {
		if !(g > 0) || math.IsInf(g, 1) {
			return errors.NewValidationError("gamma_range", "bandwidths must be positive and finite", r.gammaRange)
		}
	}
	if r.delta < 0 {
		return errors.NewValidationError("delta", "must be non-negative", r.delta)
	}
	if r.lambda < 0 || math.IsNaN(r.lambda) || math.IsInf(r.lambda, 0) {
		return errors.NewValidationError("lambda", "must be a finite non-negative number", r.lambda)
	}
	return nil
}

// source resolves the random stream for one Fit: injected source, then
// seed, then a fresh nondeterministic stream.
func (r *RFF) source() Source {
	switch {
	case r.src != nil:
		return r.src
	case r.hasSeed:
		return random.New(r.seed)
	default:
		return random.NewNondeterministic()
	}
}

// Fit samples random features, selects rank of them, and solves for the
// ridge weights. On error the previously fitted state, if any, is kept.
func (r *RFF) Fit(X, y mat.Matrix) error {
	const op = "RFF.Fit"
	start := time.Now()

	if err := r.validate(); err != nil {
		return err
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yVec, err := model.AsVector(y, n, op)
	if err != nil {
		return err
	}
	if err := errors.CheckMatrix(op, X, n, p, 0); err != nil {
		return err
	}

	logger := r.getLogger()
	alloc := Allocate(r.rank, len(r.gammaRange))
	pool := sample(r.source(), p, r.gammaRange, alloc, r.delta)
	if logger.Enabled(context.Background(), log.LevelDebug) {
		logger.Debug("Sampled candidate features",
			log.GammaRangeKey, r.gammaRange,
			log.DeltaKey, r.delta,
			log.CandidatesKey, pool.len(),
		)
	}

	Z := featureMap(X, pool.omega, pool.phase, pool.scale)
	keep := selectGreedy(Z, yVec, r.rank)

	st := &State{
		omega:     make([][]float64, len(keep)),
		phase:     make([]float64, len(keep)),
		scale:     make([]float64, len(keep)),
		gammas:    make([]float64, len(keep)),
		nFeatures: p,
	}
	for k, j := range keep {
		st.omega[k] = pool.omega[j]
		st.phase[k] = pool.phase[j]
		st.gammas[k] = pool.gamma[j]
		st.scale[k] = pool.scale[j]
		if r.normalize {
			col := mat.Col(nil, j, Z)
			if norm := floats.Norm(col, 2); norm > 0 {
				st.scale[k] = pool.scale[j] / norm
			}
		}
	}
	st.g = featureMap(X, st.omega, st.phase, st.scale)

	ridge := linear.NewRidge(
		linear.WithLambda(r.lambda),
		linear.WithFitIntercept(false),
		linear.WithLogger(logger),
	)
	if err := ridge.Fit(st.g, yVec); err != nil {
		return errors.Wrap(err, op)
	}
	st.beta = ridge.CoefVec()
	st.degenerate = ridge.Degenerate()

	r.state = st
	r.SetFitted()

	logger.Debug("RFF fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.RankKey, r.rank,
		log.LambdaKey, r.lambda,
		log.DegenerateKey, st.degenerate,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform maps X into the fitted random feature space (rows × rank).
func (r *RFF) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !r.IsFitted() || r.state == nil {
		return nil, errors.NewNotFittedError("RFF", "Transform")
	}
	n, p := X.Dims()
	if p != r.state.nFeatures {
		return nil, errors.NewDimensionError("RFF.Transform", r.state.nFeatures, p, 1)
	}
	if n == 0 {
		return nil, errors.NewModelError("RFF.Transform", "empty data", errors.ErrEmptyData)
	}
	return featureMap(X, r.state.omega, r.state.phase, r.state.scale), nil
}

// Predict returns Transform(X)·β.
func (r *RFF) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !r.IsFitted() || r.state == nil {
		return nil, errors.NewNotFittedError("RFF", "Predict")
	}
	G, err := r.Transform(X)
	if err != nil {
		return nil, err
	}
	n, _ := G.Dims()
	pred := mat.NewVecDense(n, nil)
	pred.MulVec(G, r.state.beta)
	return pred, nil
}

// Score returns the coefficient of determination R² of Predict(X) against y.
func (r *RFF) Score(X, y mat.Matrix) (float64, error) {
	if err := r.RequireFitted("RFF", "Score"); err != nil {
		return 0, err
	}
	n, _ := X.Dims()
	yVec, err := model.AsVector(y, n, "RFF.Score")
	if err != nil {
		return 0, err
	}
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yVec, pred)
}

// State returns the fitted snapshot, or nil before Fit.
func (r *RFF) State() *State {
	return r.state
}

// Rank returns the configured number of kept features.
func (r *RFF) Rank() int { return r.rank }

// Save writes the fitted model to w with encoding/gob.
func (r *RFF) Save(w io.Writer) error {
	if !r.IsFitted() || r.state == nil {
		return errors.NewNotFittedError("RFF", "Save")
	}
	ws := r.state.wire()
	ws.Rank = r.rank
	ws.GammaRange = r.gammaRange
	ws.Delta = r.delta
	ws.Lambda = r.lambda
	ws.Normalize = r.normalize
	return model.SaveModelToWriter(&ws, w)
}

// Load reads a model written by Save. opts are applied after the stored
// hyperparameters, e.g. to attach a logger.
func Load(rd io.Reader, opts ...Option) (*RFF, error) {
	var ws wireState
	if err := model.LoadModelFromReader(&ws, rd); err != nil {
		return nil, err
	}
	st, err := ws.state()
	if err != nil {
		return nil, err
	}
	r := New(ws.Rank,
		WithGammaRange(ws.GammaRange...),
		WithDelta(ws.Delta),
		WithLambda(ws.Lambda),
		WithNormalize(ws.Normalize),
	)
	for _, opt := range opts {
		opt(r)
	}
	r.state = st
	r.SetFitted()
	return r, nil
}

func (r *RFF) getLogger() log.Logger {
	if r.logger != nil {
		return r.logger
	}
	return log.GetLogger().With(log.ModelNameKey, "RFF")
}
