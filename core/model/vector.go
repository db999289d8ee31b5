package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// AsVector は n×1 または 1×n の行列を長さ n のベクトルとしてコピーする
//
// n が負の場合は長さを検査しない。それ以外の形状は ValueError、
// 長さの不一致は DimensionError（axis 0）を返す。
func AsVector(y mat.Matrix, n int, op string) (*mat.VecDense, error) {
	r, c := y.Dims()
	var length int
	switch {
	case c == 1:
		length = r
	case r == 1:
		length = c
	default:
		return nil, errors.NewValueError(op, "y must be a vector (n×1 or 1×n)")
	}
	if n >= 0 && length != n {
		return nil, errors.NewDimensionError(op, n, length, 0)
	}

	v := mat.NewVecDense(length, nil)
	if c == 1 {
		for i := 0; i < length; i++ {
			v.SetVec(i, y.At(i, 0))
		}
	} else {
		for i := 0; i < length; i++ {
			v.SetVec(i, y.At(0, i))
		}
	}
	return v, nil
}
