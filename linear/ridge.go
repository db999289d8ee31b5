// Package linear はリッジ回帰と低ランクカーネルリッジ回帰を提供する
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/model"
	"github.com/YuminosukeSato/lowrank/core/parallel"
	"github.com/YuminosukeSato/lowrank/metrics"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// Ridge はL2正則化付き線形回帰モデル
//
// (XᵀX + λI) β = Xᵀy をCholesky分解で解き、解けない場合はSVDの
// 擬似逆行列にフォールバックして Degenerate() を true にする。
type Ridge struct {
	model.BaseEstimator // BaseEstimatorを埋め込み

	lambda       float64
	fitIntercept bool
	logger       log.Logger

	coef       *mat.VecDense // 重み（係数）
	intercept  float64       // 切片
	nFeatures  int           // 特徴量の数
	degenerate bool
	condition  float64
}

// NewRidge は新しいリッジ回帰モデルを作成する
// デフォルトは λ = 0、切片あり
func NewRidge(opts ...Option) *Ridge {
	r := &Ridge{fitIntercept: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit はモデルを訓練データで学習させる
// y は n×1 または 1×n の行列（*mat.VecDense を含む）
func (r *Ridge) Fit(X, y mat.Matrix) error {
	const op = "Ridge.Fit"
	start := time.Now()

	// 入力の検証
	n, c := X.Dims()
	if n == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yVec, err := model.AsVector(y, n, op)
	if err != nil {
		return err
	}

	// 切片を推定する場合は X と y を中心化してから解く
	design := X
	var xMean []float64
	var yMean float64
	if r.fitIntercept {
		xMean = columnMeans(X)
		centered := mat.NewDense(n, c, nil)
		parallel.ParallelizeWithThreshold(n, parallel.RowThreshold, func(s, e int) {
			for i := s; i < e; i++ {
				for j := 0; j < c; j++ {
					centered.Set(i, j, X.At(i, j)-xMean[j])
				}
			}
		})
		design = centered

		for i := 0; i < n; i++ {
			yMean += yVec.AtVec(i)
		}
		yMean /= float64(n)
		yc := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			yc.SetVec(i, yVec.AtVec(i)-yMean)
		}
		yVec = yc
	}

	sol, err := solveRidge(design, yVec, r.lambda)
	if err != nil {
		return errors.Wrap(err, op)
	}

	r.coef = sol.Beta
	r.nFeatures = c
	r.degenerate = sol.Degenerate
	r.condition = sol.Condition
	r.intercept = 0
	if r.fitIntercept {
		r.intercept = yMean
		for j := 0; j < c; j++ {
			r.intercept -= xMean[j] * r.coef.AtVec(j)
		}
	}

	if sol.Degenerate {
		errors.Warn(errors.NewSingularMatrixWarning(op, c, r.lambda, sol.Condition))
	}

	// モデルを学習済み状態に設定
	r.SetFitted()

	r.getLogger().Debug("Ridge fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, c,
		log.LambdaKey, r.lambda,
		log.DegenerateKey, sol.Degenerate,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (r *Ridge) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := r.RequireFitted("Ridge", "Predict"); err != nil {
		return nil, err
	}

	n, c := X.Dims()
	if c != r.nFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", r.nFeatures, c, 1)
	}

	// 予測: y = X * coef + intercept
	pred := mat.NewVecDense(n, nil)
	pred.MulVec(X, r.coef)
	if r.intercept != 0 {
		for i := 0; i < n; i++ {
			pred.SetVec(i, pred.AtVec(i)+r.intercept)
		}
	}
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	if err := r.RequireFitted("Ridge", "Score"); err != nil {
		return 0, err
	}
	n, _ := X.Dims()
	yVec, err := model.AsVector(y, n, "Ridge.Score")
	if err != nil {
		return 0, err
	}
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yVec, yPred)
}

// Coef は学習された係数のコピーを返す。未学習の場合は nil
func (r *Ridge) Coef() []float64 {
	if r.coef == nil {
		return nil
	}
	return mat.Col(nil, 0, r.coef)
}

// CoefVec は学習された係数を *mat.VecDense として返す（コピー）
func (r *Ridge) CoefVec() *mat.VecDense {
	if r.coef == nil {
		return nil
	}
	return mat.VecDenseCopyOf(r.coef)
}

// Intercept は学習された切片を返す
func (r *Ridge) Intercept() float64 {
	if !r.IsFitted() {
		return 0
	}
	return r.intercept
}

// Lambda は正則化パラメータを返す
func (r *Ridge) Lambda() float64 {
	return r.lambda
}

// Degenerate は直近の学習がSVDフォールバックを使ったかどうかを返す
func (r *Ridge) Degenerate() bool {
	return r.degenerate
}

// Condition は直近の学習で推定した (XᵀX + λI) の条件数を返す
func (r *Ridge) Condition() float64 {
	return r.condition
}

func (r *Ridge) getLogger() log.Logger {
	if r.logger != nil {
		return r.logger
	}
	return log.GetLogger().With(log.ModelNameKey, "Ridge")
}

func columnMeans(X mat.Matrix) []float64 {
	n, c := X.Dims()
	means := make([]float64, c)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			means[j] += X.At(i, j)
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}
	return means
}
