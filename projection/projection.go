// Package projection computes low-rank approximations of a kernel matrix
// K ≈ G·Gᵀ with G of size n×rank, and maps new rows into the same space.
package projection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/kernel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Projection is a fitted low-rank kernel embedding.
//
// Active indexes the training rows the approximation is built on, T maps
// kernel values against those rows into the embedding, and G is the
// embedding of the training rows themselves.
type Projection struct {
	Method string
	Active []int
	T      *mat.Dense
	G      *mat.Dense

	kernel *kernel.Interface
}

// Rank returns the number of embedding columns.
func (p *Projection) Rank() int {
	_, c := p.G.Dims()
	return c
}

// Transform returns K(Xnew, X[Active])·T.
func (p *Projection) Transform(Xnew mat.Matrix) (*mat.Dense, error) {
	if p == nil || p.kernel == nil {
		return nil, errors.NewNotFittedError("Projection", "Transform")
	}
	C, err := p.kernel.Cross(Xnew, p.Active)
	if err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Mul(C, p.T)
	return &out, nil
}
