// Package preprocessing は特徴量と目的変数の前処理を提供する
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/lowrank/core/model"
	"github.com/YuminosukeSato/lowrank/core/parallel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Norm は列ごとのスケールの計算方法
type Norm int

const (
	// NormNone はスケーリングしない (中心化のみ)
	NormNone Norm = iota
	// NormStd は母標準偏差で割る
	NormStd
	// NormL2 は中心化後の列のL2ノルムで割る
	NormL2
)

// String はNormの名前を返す
func (n Norm) String() string {
	switch n {
	case NormNone:
		return "none"
	case NormStd:
		return "std"
	case NormL2:
		return "l2"
	default:
		return fmt.Sprintf("Norm(%d)", int(n))
	}
}

// zeroScale 未満のスケールは1として扱う
const zeroScale = 1e-12

// ColumnScaler は各列を中心化し、指定したノルムでスケーリングする
type ColumnScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の除数 (ゼロの列は1)
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか
	WithMean bool

	// Norm はスケールの種類
	Norm Norm
}

// NewColumnScaler は新しいColumnScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewColumnScaler(true, preprocessing.NormL2)
//	XScaled, err := scaler.FitTransform(X)
func NewColumnScaler(withMean bool, norm Norm) *ColumnScaler {
	return &ColumnScaler{WithMean: withMean, Norm: norm}
}

// NewStandardScaler は平均0、標準偏差1に変換するスケーラーを作成する
func NewStandardScaler() *ColumnScaler {
	return NewColumnScaler(true, NormStd)
}

// Fit は訓練データから平均とスケールを計算する
func (s *ColumnScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("ColumnScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	switch s.Norm {
	case NormNone, NormStd, NormL2:
	default:
		return errors.NewValidationError("norm", "unknown norm", int(s.Norm))
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if s.WithMean {
			mean[j] = stat.Mean(col, nil)
		}
		switch s.Norm {
		case NormStd:
			_, variance := stat.PopMeanVariance(col, nil)
			if !s.WithMean {
				// 中心化しない場合は原点まわりの二乗平均
				variance = floats.Dot(col, col) / float64(r)
			}
			scale[j] = math.Sqrt(variance)
		case NormL2:
			floats.AddConst(-mean[j], col)
			scale[j] = floats.Norm(col, 2)
		default:
			scale[j] = 1
		}
		if !(scale[j] > zeroScale) {
			scale[j] = 1
		}
	}

	s.NFeatures = c
	s.Mean = mean
	s.Scale = scale
	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報でデータを変換する
func (s *ColumnScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.RequireFitted("ColumnScaler", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("ColumnScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.DenseCopyOf(X)
	parallel.ParallelizeWithThreshold(r, parallel.RowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := result.RawRowView(i)
			for j := range row {
				row[j] = (row[j] - s.Mean[j]) / s.Scale[j]
			}
		}
	})
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *ColumnScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は変換済みのデータを元のスケールに戻す
func (s *ColumnScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.RequireFitted("ColumnScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("ColumnScaler.InverseTransform", s.NFeatures, c, 1)
	}
	result := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		for j := range row {
			row[j] = row[j]*s.Scale[j] + s.Mean[j]
		}
	}
	return result, nil
}

// String はスケーラーの文字列表現を返す
func (s *ColumnScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("ColumnScaler(with_mean=%t, norm=%s)", s.WithMean, s.Norm)
	}
	return fmt.Sprintf("ColumnScaler(with_mean=%t, norm=%s, n_features=%d)", s.WithMean, s.Norm, s.NFeatures)
}

// CenterVector はyから平均を引いたコピーと平均を返す
func CenterVector(y mat.Vector) (*mat.VecDense, float64, error) {
	n := y.Len()
	if n == 0 {
		return nil, 0, errors.NewModelError("CenterVector", "empty data", errors.ErrEmptyData)
	}
	v := mat.VecDenseCopyOf(y)
	data := v.RawVector().Data
	mean := stat.Mean(data, nil)
	floats.AddConst(-mean, data)
	return v, mean, nil
}
