package experiment

import (
	"context"
	"math"
	"time"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/metrics"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// TuneResult is the best trial of a search.
type TuneResult struct {
	Method         string
	Rank           int
	Lambda         float64
	RMSEValidation float64
	RMSETest       float64
	Trials         int
}

// search is the objective of one method's study. It records the best trial
// itself so the test RMSE of the winner is available without refitting.
type search struct {
	r      *Runner
	sp     *split
	method string
	gammas []float64
	best   TuneResult
}

func (s *search) objective(trial goptuna.Trial) (float64, error) {
	cfg := s.r.cfg
	rank, err := trial.SuggestInt("rank", lo.Min(cfg.RankRange), lo.Max(cfg.RankRange))
	if err != nil {
		return 0, errors.Wrap(err, "experiment: suggest rank")
	}
	lambda, err := trial.SuggestLogFloat("lambda", cfg.Tune.LambdaMin, cfg.Tune.LambdaMax)
	if err != nil {
		return 0, errors.Wrap(err, "experiment: suggest lambda")
	}

	var va, te float64
	err = errors.SafeExecute("tune "+s.method, func() error {
		m, err := s.r.fit(s.sp, s.method, rank, lambda, 0, s.gammas)
		if err != nil {
			return err
		}
		if va, err = s.score(m.Predict, s.sp.xVa, s.sp.yVa); err != nil {
			return err
		}
		te, err = s.score(m.Predict, s.sp.xTe, s.sp.yTe)
		return err
	})
	if err != nil {
		s.r.logger.Warn("Trial failed",
			log.MethodKey, s.method,
			log.RankKey, rank,
			log.LambdaKey, lambda,
			"error", err,
		)
		return 0, goptuna.ErrTrialPruned
	}

	s.best.Trials++
	if s.best.Trials == 1 || va < s.best.RMSEValidation {
		s.best.Rank, s.best.Lambda = rank, lambda
		s.best.RMSEValidation, s.best.RMSETest = va, te
	}
	s.r.logger.Debug("Trial completed",
		log.MethodKey, s.method,
		log.RankKey, rank,
		log.LambdaKey, lambda,
		"metrics.rmse_va", va,
	)
	return va, nil
}

func (s *search) score(predict func(mat.Matrix) (*mat.VecDense, error), X *mat.Dense, y *mat.VecDense) (float64, error) {
	p, err := predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.ResidualStd(y, p)
}

// Tune runs a TPE search over (rank, lambda) for each configured method on
// the first iteration's split of the first n, minimizing validation RMSE.
// A trial whose fit fails is logged and reported to the study as pruned, so
// it neither stops the search nor counts as a result.
func (r *Runner) Tune(ctx context.Context) ([]TuneResult, error) {
	start := time.Now()
	sp, err := r.prepare(r.cfg.NRange[0], 0)
	if err != nil {
		return nil, err
	}
	gammas := r.cfg.Gamma.Range()

	results := make([]TuneResult, 0, len(r.cfg.Methods))
	for _, method := range r.cfg.Methods {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		s := &search{r: r, sp: sp, method: method, gammas: gammas, best: TuneResult{Method: method}}
		study, err := goptuna.CreateStudy("lowrank-"+method,
			goptuna.StudyOptionDirection(goptuna.StudyDirectionMinimize),
			goptuna.StudyOptionSampler(tpe.NewSampler()),
			goptuna.StudyOptionLogger(r.logger.With(log.MethodKey, method)),
		)
		if err != nil {
			return results, errors.Wrap(err, "experiment: create study")
		}
		if err := study.Optimize(s.objective, r.cfg.Tune.Trials); err != nil {
			return results, errors.Wrapf(err, "experiment: optimize %s", method)
		}
		if s.best.Trials == 0 {
			r.logger.Warn("No successful trial", log.MethodKey, method)
			s.best.RMSEValidation, s.best.RMSETest = math.NaN(), math.NaN()
		} else if v, err := study.GetBestValue(); err == nil && v != s.best.RMSEValidation {
			r.logger.Warn("Study best value differs from tracked best",
				log.MethodKey, method, "study", v, "tracked", s.best.RMSEValidation)
		}
		results = append(results, s.best)

		r.logger.Info("Tuning completed",
			log.MethodKey, method,
			log.RankKey, s.best.Rank,
			log.LambdaKey, s.best.Lambda,
			log.RMSEKey, s.best.RMSEValidation,
		)
	}
	r.logger.Debug("Tune finished", log.DurationMsKey, time.Since(start).Milliseconds())
	return results, nil
}
