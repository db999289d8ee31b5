package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 または 1×n の行列
	Fit(X, y mat.Matrix) error
}

// Regressor は回帰モデルのインターフェース
//
// RFF、Ridge、LowRankRidge がこれを満たし、実験ドライバはこの型だけを扱う。
type Regressor interface {
	Fitter
	// Predict は入力データに対する予測ベクトル（長さ = X の行数）を返す
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// FeatureMap は学習済みの特徴写像のインターフェース
type FeatureMap interface {
	// Transform は X を低ランク特徴空間 (行数 × rank) へ写像する
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// Scorer は決定係数（R²）を計算できるモデルのインターフェース
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}
