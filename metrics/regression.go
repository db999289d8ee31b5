// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// residuals は入力を検証し yTrue - yPred を返す
func residuals(op string, yTrue, yPred *mat.VecDense) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	res := make([]float64, n)
	for i := range res {
		res[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return res, nil
}

// SSE は残差平方和（Sum of Squared Errors）を計算する
func SSE(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("SSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Dot(res, res), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	return floats.Dot(res, res) / float64(len(res)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// ResidualStd は残差の母標準偏差 √Var(yTrue - yPred) を計算する
//
// 残差の平均を差し引くため、予測に定数のずれがあっても値は変わらない。
// 実験結果CSVの RMSE 列はこの値を記録する。
func ResidualStd(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("ResidualStd", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(stat.PopVariance(res, nil)), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for _, r := range res {
		sum += math.Abs(r)
	}
	return sum / float64(len(res)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yt := mat.Col(nil, 0, yTrue)
	yMean := stat.Mean(yt, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss float64
	for _, v := range yt {
		tss += (v - yMean) * (v - yMean)
	}
	rss := floats.Dot(res, res)

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
//
// 説明分散スコア = 1 - Var(yTrue - yPred) / Var(yTrue)（母分散）
//
// yTrue の分散が0の場合は UndefinedMetricWarning を出し、残差の分散も0なら1、
// そうでなければ0を返す
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	res, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yt := mat.Col(nil, 0, yTrue)
	varYTrue := stat.PopVariance(yt, nil)
	varRes := stat.PopVariance(res, nil)
	if varYTrue == 0 {
		score := 0.0
		if varRes == 0 {
			score = 1
		}
		errors.Warn(errors.NewUndefinedMetricWarning("ExplainedVarianceScore", "no variance in yTrue", score))
		return score, nil
	}
	return 1 - varRes/varYTrue, nil
}
