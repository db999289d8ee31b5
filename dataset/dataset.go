// Package dataset loads regression datasets for the benchmark harness and
// splits them into training, validation and test indices.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/kernel"
	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// SyntheticName is the dataset name Load resolves to Synthetic.
const SyntheticName = "synthetic"

// Parameters of the synthetic dataset produced by Load.
const (
	SyntheticFeatures = 10
	SyntheticGamma    = 0.1
)

// syntheticBlock is the number of rows of K materialized at once by Synthetic.
const syntheticBlock = 256

// Dataset is a dense regression problem.
type Dataset struct {
	Name   string
	Data   *mat.Dense    // n×p
	Target *mat.VecDense // length n
}

// Dims returns the number of samples and features.
func (d *Dataset) Dims() (n, p int) {
	return d.Data.Dims()
}

// CSVOptions controls LoadCSV.
type CSVOptions struct {
	// Header marks the first record as column names.
	Header bool
	// Target names the target column. It requires Header.
	Target string
	// TargetIndex is the target column when Target is empty. Negative values
	// count from the end, so the zero value of CSVOptions uses column 0 and
	// -1 selects the last column.
	TargetIndex int
	// MaxRows limits the number of data rows read. Zero or negative reads all.
	MaxRows int
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// DefaultCSVOptions reads a headed file whose last column is the target.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Header: true, TargetIndex: -1}
}

// LoadCSV reads a numeric CSV file.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSV(f, name, opts)
}

// ReadCSV parses numeric CSV records from r.
func ReadCSV(r io.Reader, name string, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	target := -1
	width := 0
	line := 0
	if opts.Header {
		header, err := reader.Read()
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: read header of %s", name)
		}
		line++
		width = len(header)
		if opts.Target != "" {
			for j, h := range header {
				if strings.TrimSpace(h) == opts.Target {
					target = j
					break
				}
			}
			if target < 0 {
				return nil, errors.NewValidationError("target", "column not found in header", opts.Target)
			}
		}
	} else if opts.Target != "" {
		return nil, errors.NewValidationError("target", "a named target requires a header", opts.Target)
	}

	var data, y []float64
	rows := 0
	for opts.MaxRows <= 0 || rows < opts.MaxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: read %s", name)
		}
		line++
		if width == 0 {
			width = len(record)
		}
		if width < 2 {
			return nil, errors.NewValueError("dataset.ReadCSV", "need at least one feature and a target column")
		}
		if target < 0 {
			target = opts.TargetIndex
			if target < 0 {
				target += width
			}
			if target < 0 || target >= width {
				return nil, errors.NewValidationError("target_index", "out of range", opts.TargetIndex)
			}
		}
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset: %s line %d column %d", name, line, j+1)
			}
			if j == target {
				y = append(y, v)
			} else {
				data = append(data, v)
			}
		}
		rows++
	}
	if rows == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty data", errors.ErrEmptyData)
	}

	return &Dataset{
		Name:   name,
		Data:   mat.NewDense(rows, width-1, data),
		Target: mat.NewVecDense(rows, y),
	}, nil
}

// Synthetic draws X ~ U(0,1)^{n×p} and α ~ U(0,1)^n from seed and returns
// the dataset (X, K·α) with K the exponential kernel of bandwidth gamma.
func Synthetic(n, p int, gamma float64, seed int64) (*Dataset, error) {
	if n < 1 || p < 1 {
		return nil, errors.NewValidationError("n, p", "must be positive", [2]int{n, p})
	}
	src := random.New(seed)
	X := mat.NewDense(n, p, random.UniformVector(src, n*p, 0, 1))
	alpha := mat.NewVecDense(n, random.UniformVector(src, n, 0, 1))

	y := mat.NewVecDense(n, nil)
	for start := 0; start < n; start += syntheticBlock {
		end := min(start+syntheticBlock, n)
		K, err := kernel.ExponentialE(X.Slice(start, end, 0, p), X, gamma)
		if err != nil {
			return nil, err
		}
		y.SliceVec(start, end).(*mat.VecDense).MulVec(K, alpha)
	}
	return &Dataset{Name: SyntheticName, Data: X, Target: y}, nil
}

// Load resolves a dataset by name: "synthetic" generates n samples from
// seed, any other name reads at most n rows of <dataDir>/<name>.csv with
// DefaultCSVOptions.
func Load(name string, n int, seed int64, dataDir string) (*Dataset, error) {
	if name == SyntheticName {
		return Synthetic(n, SyntheticFeatures, SyntheticGamma, seed)
	}
	opts := DefaultCSVOptions()
	opts.MaxRows = n
	return LoadCSV(filepath.Join(dataDir, name+".csv"), opts)
}

// Split shuffles [0, n) with seed and cuts it into contiguous training,
// validation and test index sets of sizes ⌊train·n⌋, ⌊validation·n⌋ and the
// remainder.
func Split(n int, train, validation float64, seed int64) (tr, va, te []int, err error) {
	if n < 1 {
		return nil, nil, nil, errors.NewModelError("dataset.Split", "empty data", errors.ErrEmptyData)
	}
	if !(train > 0) || validation < 0 || train+validation > 1 {
		return nil, nil, nil, errors.NewValidationError("training_size, validation_size",
			"need 0 < training_size and training_size + validation_size <= 1", [2]float64{train, validation})
	}
	ix := random.Perm(random.New(seed), n)
	a := int(train * float64(n))
	b := a + int(validation*float64(n))
	return ix[:a], ix[a:b], ix[b:], nil
}

// Subset returns the rows idx of X and y as new dense values.
func Subset(X *mat.Dense, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	if len(idx) == 0 {
		return &mat.Dense{}, &mat.VecDense{}
	}
	_, p := X.Dims()
	Xs := mat.NewDense(len(idx), p, nil)
	ys := mat.NewVecDense(len(idx), nil)
	for k, i := range idx {
		Xs.SetRow(k, X.RawRowView(i))
		ys.SetVec(k, y.AtVec(i))
	}
	return Xs, ys
}
