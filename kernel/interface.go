package kernel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Interface is a kernel bound to a training matrix X. It evaluates columns,
// the diagonal and sub-blocks of K(X, X) on demand so low-rank methods never
// materialize the full n×n Gram matrix.
type Interface struct {
	X    *mat.Dense
	K    Func
	diag []float64
}

// NewInterface binds k to the rows of X. X is not copied.
func NewInterface(X mat.Matrix, k Func) (*Interface, error) {
	if k == nil {
		return nil, errors.NewValueError("kernel.NewInterface", "kernel function is nil")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("kernel.NewInterface", "empty data", errors.ErrEmptyData)
	}
	return &Interface{X: asDense(X), K: k}, nil
}

// N returns the number of training rows.
func (ki *Interface) N() int {
	r, _ := ki.X.Dims()
	return r
}

// Column returns K(X, x_j) as a slice of length N.
func (ki *Interface) Column(j int) ([]float64, error) {
	if j < 0 || j >= ki.N() {
		return nil, errors.NewValueError("kernel.Column", "column index out of range")
	}
	_, c := ki.X.Dims()
	Kj, err := ki.K(ki.X, ki.X.Slice(j, j+1, 0, c))
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, Kj), nil
}

// Diag returns the diagonal of K(X, X). The result is cached and must not be
// modified by the caller.
func (ki *Interface) Diag() ([]float64, error) {
	if ki.diag != nil {
		return ki.diag, nil
	}
	n := ki.N()
	_, c := ki.X.Dims()
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		row := ki.X.Slice(i, i+1, 0, c)
		Kii, err := ki.K(row, row)
		if err != nil {
			return nil, err
		}
		d[i] = Kii.At(0, 0)
	}
	ki.diag = d
	return d, nil
}

// Block returns K(X[rows], X[cols]).
func (ki *Interface) Block(rows, cols []int) (*mat.Dense, error) {
	R, err := ki.rows(rows)
	if err != nil {
		return nil, err
	}
	C, err := ki.rows(cols)
	if err != nil {
		return nil, err
	}
	return ki.K(R, C)
}

// Cross returns K(Xnew, X[cols]).
func (ki *Interface) Cross(Xnew mat.Matrix, cols []int) (*mat.Dense, error) {
	_, c := ki.X.Dims()
	if _, nc := Xnew.Dims(); nc != c {
		return nil, errors.NewDimensionError("kernel.Cross", c, nc, 1)
	}
	C, err := ki.rows(cols)
	if err != nil {
		return nil, err
	}
	return ki.K(Xnew, C)
}

// Full materializes K(X, X). Only intended for small problems and tests.
func (ki *Interface) Full() (*mat.Dense, error) {
	return ki.K(ki.X, ki.X)
}

func (ki *Interface) rows(idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, errors.NewValueError("kernel.Interface", "empty index set")
	}
	n := ki.N()
	_, c := ki.X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		if i < 0 || i >= n {
			return nil, errors.NewValueError("kernel.Interface", "row index out of range")
		}
		out.SetRow(k, ki.X.RawRowView(i))
	}
	return out, nil
}
