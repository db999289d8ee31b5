// Package lowrank provides low-rank kernel ridge regression for Go, with
// random Fourier features (RFF) over a sum of exponential kernels and a
// benchmark harness that compares RFF against incomplete Cholesky (ICD) and
// Nyström approximations.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/lowrank/projection/rff"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
//	    y := mat.NewVecDense(4, []float64{0, 0.8, 0.9, 0.1})
//
//	    model := rff.New(20,
//	        rff.WithGammaRange(0.1, 1, 10),
//	        rff.WithLambda(1e-3),
//	        rff.WithRandomState(42),
//	    )
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := model.Predict(mat.NewDense(1, 1, []float64{1.5}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred.AtVec(0))
//	}
//
// # Packages
//
//   - kernel: exponential kernel and sums of kernels
//   - projection: ICD and Nyström low-rank kernel projections
//   - projection/rff: random Fourier feature regression with multi-kernel selection
//   - linear: ridge regression and low-rank kernel ridge regression
//   - metrics: regression metrics (RMSE, explained variance, R²)
//   - preprocessing: column scaling and target centering
//   - dataset: CSV and synthetic datasets, train/validation/test splits
//   - experiment: the benchmark sweep, TPE tuning, summaries and plots
//   - core/model, core/parallel, core/random: shared interfaces and helpers
//   - pkg/errors, pkg/log: error types and structured logging
//
// The lowrank command (cmd/lowrank) drives the benchmark from the command line.
package lowrank
