package experiment

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/model"
	"github.com/YuminosukeSato/lowrank/dataset"
	"github.com/YuminosukeSato/lowrank/linear"
	"github.com/YuminosukeSato/lowrank/metrics"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
	"github.com/YuminosukeSato/lowrank/preprocessing"
	"github.com/YuminosukeSato/lowrank/projection/rff"
)

// Runner executes the benchmark sweep described by a Config.
type Runner struct {
	cfg      *Config
	logger   log.Logger
	progress io.Writer
	now      func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the diagnostic logger.
func WithLogger(logger log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithProgressWriter sets where the progress bar is drawn. The default
// discards it.
func WithProgressWriter(w io.Writer) RunnerOption {
	return func(r *Runner) { r.progress = w }
}

// WithClock sets the clock used to name the output directory.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   log.GetLogger().With(log.ComponentKey, "experiment"),
		progress: io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run writes the sweep to a new file under the output directory and returns
// its path along with the rows written.
func (r *Runner) Run(ctx context.Context) (string, []Result, error) {
	path, err := OutputPath(r.cfg.OutputDir, r.now())
	if err != nil {
		return "", nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "experiment: create %s", path)
	}
	defer f.Close()

	r.logger.Info("Writing results", log.OutputPathKey, path)
	results, err := r.Sweep(ctx, f)
	if err != nil {
		return path, results, err
	}
	return path, results, errors.Wrap(f.Close(), "experiment: close results")
}

// split is one prepared cross-validation iteration.
type split struct {
	name          string
	n, p          int
	xTr, xVa, xTe *mat.Dense
	yTr, yVa, yTe *mat.VecDense
}

// Sweep evaluates every (iteration, n, method, rank, lambda) combination and
// writes one row per successful combination to w. A failing combination is
// logged at warn level and skipped.
func (r *Runner) Sweep(ctx context.Context, w io.Writer) ([]Result, error) {
	start := time.Now()
	rw, err := NewResultWriter(w)
	if err != nil {
		return nil, err
	}
	bar := progressbar.NewOptions(r.cfg.Combinations(),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("sweep"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)

	gammas := r.cfg.Gamma.Range()
	var results []Result
	for cv := 0; cv < r.cfg.CVIterations; cv++ {
		for _, n := range r.cfg.NRange {
			sp, err := r.prepare(n, cv)
			if err != nil {
				return results, err
			}
			for _, method := range r.cfg.Methods {
				for _, rank := range r.cfg.RankRange {
					for _, lambda := range r.cfg.LambdaRange {
						if err := ctx.Err(); err != nil {
							return results, err
						}
						var res Result
						op := fmt.Sprintf("%s rank=%d lambda=%g", method, rank, lambda)
						err := errors.SafeExecute(op, func() (err error) {
							res, err = r.evaluate(sp, method, rank, lambda, cv, gammas)
							return err
						})
						if err := bar.Add(1); err != nil {
							r.logger.Debug("Progress update failed", "error", err)
						}
						if err != nil {
							r.logger.Warn("Combination failed",
								log.MethodKey, method,
								log.RankKey, rank,
								log.IterationKey, cv,
								"error", err,
							)
							continue
						}
						if err := rw.Write(res); err != nil {
							return results, err
						}
						results = append(results, res)
					}
				}
			}
		}
	}
	if err := bar.Finish(); err != nil {
		r.logger.Debug("Progress update failed", "error", err)
	}

	r.logger.Info("Sweep completed",
		log.DatasetKey, r.cfg.Dataset,
		"rows", rw.Rows(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return results, nil
}

// prepare loads n samples for iteration cv, centers and L2-normalizes the
// columns of X, centers y, and splits with seed cv.
func (r *Runner) prepare(n, cv int) (*split, error) {
	ds, err := dataset.Load(r.cfg.Dataset, n, int64(cv), r.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	X, err := preprocessing.NewColumnScaler(true, preprocessing.NormL2).FitTransform(ds.Data)
	if err != nil {
		return nil, err
	}
	y, _, err := preprocessing.CenterVector(ds.Target)
	if err != nil {
		return nil, err
	}
	rows, p := X.Dims()
	tr, va, te, err := dataset.Split(rows, r.cfg.TrainingSize, r.cfg.ValidationSize, int64(cv))
	if err != nil {
		return nil, err
	}

	sp := &split{name: ds.Name, n: rows, p: p}
	sp.xTr, sp.yTr = dataset.Subset(X, y, tr)
	sp.xVa, sp.yVa = dataset.Subset(X, y, va)
	sp.xTe, sp.yTe = dataset.Subset(X, y, te)

	r.logger.Info("Prepared split",
		log.DatasetKey, ds.Name,
		log.SamplesKey, rows,
		log.FeaturesKey, p,
		log.IterationKey, cv,
	)
	return sp, nil
}

// newModel builds the regressor for one combination.
func (r *Runner) newModel(method string, rank int, lambda float64, gammas []float64, seed int64) (model.Regressor, error) {
	logger := r.logger.With(log.MethodKey, method)
	switch method {
	case MethodICD, MethodNystrom:
		return linear.NewLowRankRidge(linear.LowRankParams{
			Method: method,
			Rank:   rank,
			Lambda: lambda,
			Gammas: gammas,
			Seed:   seed,
			Logger: logger,
		}), nil
	case MethodRFF:
		return rff.New(rank,
			rff.WithGammaRange(gammas...),
			rff.WithDelta(r.cfg.Delta),
			rff.WithLambda(lambda),
			rff.WithRandomState(seed),
			rff.WithLogger(logger),
		), nil
	default:
		return nil, errors.NewValidationError("method", "unknown method", method)
	}
}

// fit builds and fits the model for one combination on the training part.
func (r *Runner) fit(sp *split, method string, rank int, lambda float64, cv int, gammas []float64) (model.Regressor, error) {
	m, err := r.newModel(method, rank, lambda, gammas, int64(cv))
	if err != nil {
		return nil, err
	}
	if err := m.Fit(sp.xTr, sp.yTr); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Runner) evaluate(sp *split, method string, rank int, lambda float64, cv int, gammas []float64) (Result, error) {
	m, err := r.fit(sp, method, rank, lambda, cv, gammas)
	if err != nil {
		return Result{}, err
	}
	pTr, err := m.Predict(sp.xTr)
	if err != nil {
		return Result{}, err
	}
	pVa, err := m.Predict(sp.xVa)
	if err != nil {
		return Result{}, err
	}
	pTe, err := m.Predict(sp.xTe)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Dataset:   r.cfg.Dataset,
		N:         sp.n,
		Method:    method,
		Rank:      rank,
		Iteration: cv,
		Lambda:    lambda,
		GammaMin:  lo.Min(gammas),
		GammaMax:  lo.Max(gammas),
		P:         len(gammas),
	}
	scores := []struct {
		dst   *float64
		score func(yTrue, yPred *mat.VecDense) (float64, error)
		y, p  *mat.VecDense
	}{
		{&res.RMSETrain, metrics.ResidualStd, sp.yTr, pTr},
		{&res.RMSEValidation, metrics.ResidualStd, sp.yVa, pVa},
		{&res.RMSETest, metrics.ResidualStd, sp.yTe, pTe},
		{&res.EvarTrain, metrics.ExplainedVarianceScore, sp.yTr, pTr},
		{&res.EvarTest, metrics.ExplainedVarianceScore, sp.yTe, pTe},
	}
	for _, s := range scores {
		if *s.dst, err = s.score(s.y, s.p); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
