package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Header is the column order of the results file.
var Header = []string{
	"dataset", "n", "method", "rank", "iteration", "lambda",
	"gmin", "gmax", "p", "evar_tr", "evar",
	"RMSE_tr", "RMSE_va", "RMSE",
}

// Result is one row of the results file. The RMSE columns hold the standard
// deviation of the residuals and the evar columns the explained variance.
type Result struct {
	Dataset        string
	N              int
	Method         string
	Rank           int
	Iteration      int
	Lambda         float64
	GammaMin       float64
	GammaMax       float64
	P              int
	EvarTrain      float64
	EvarTest       float64
	RMSETrain      float64
	RMSEValidation float64
	RMSETest       float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Record returns the row in Header order.
func (r Result) Record() []string {
	return []string{
		r.Dataset,
		strconv.Itoa(r.N),
		r.Method,
		strconv.Itoa(r.Rank),
		strconv.Itoa(r.Iteration),
		formatFloat(r.Lambda),
		formatFloat(r.GammaMin),
		formatFloat(r.GammaMax),
		strconv.Itoa(r.P),
		formatFloat(r.EvarTrain),
		formatFloat(r.EvarTest),
		formatFloat(r.RMSETrain),
		formatFloat(r.RMSEValidation),
		formatFloat(r.RMSETest),
	}
}

// ParseResult is the inverse of Record.
func ParseResult(record []string) (Result, error) {
	if len(record) != len(Header) {
		return Result{}, errors.NewDimensionError("experiment.ParseResult", len(Header), len(record), 1)
	}
	var (
		r    Result
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	r.Dataset = record[0]
	r.N = atoi(record[1])
	r.Method = record[2]
	r.Rank = atoi(record[3])
	r.Iteration = atoi(record[4])
	r.Lambda = atof(record[5])
	r.GammaMin = atof(record[6])
	r.GammaMax = atof(record[7])
	r.P = atoi(record[8])
	r.EvarTrain = atof(record[9])
	r.EvarTest = atof(record[10])
	r.RMSETrain = atof(record[11])
	r.RMSEValidation = atof(record[12])
	r.RMSETest = atof(record[13])
	if len(errs) > 0 {
		return Result{}, errors.Wrap(errs[0], "experiment: parse result")
	}
	return r, nil
}

// ReadResults reads a results file written by ResultWriter.
func ReadResults(rd io.Reader) ([]Result, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = len(Header)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "experiment: read results")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("experiment.ReadResults", "missing header", errors.ErrEmptyData)
	}
	results := make([]Result, 0, len(records)-1)
	for _, rec := range records[1:] {
		r, err := ParseResult(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// ResultWriter writes the header and then one flushed row per Write.
type ResultWriter struct {
	w    *csv.Writer
	rows int
}

// NewResultWriter writes the header to w.
func NewResultWriter(w io.Writer) (*ResultWriter, error) {
	rw := &ResultWriter{w: csv.NewWriter(w)}
	if err := rw.write(Header); err != nil {
		return nil, err
	}
	return rw, nil
}

// Write appends r and flushes it.
func (rw *ResultWriter) Write(r Result) error {
	if err := rw.write(r.Record()); err != nil {
		return err
	}
	rw.rows++
	return nil
}

// Rows returns the number of result rows written.
func (rw *ResultWriter) Rows() int { return rw.rows }

func (rw *ResultWriter) write(record []string) error {
	if err := rw.w.Write(record); err != nil {
		return errors.Wrap(err, "experiment: write results")
	}
	rw.w.Flush()
	return errors.Wrap(rw.w.Error(), "experiment: flush results")
}

// OutputPath creates <dir>/<Y>-<M>-<D> for now and returns
// results_<count>.csv inside it, where count is the number of entries the
// day directory already holds.
func OutputPath(dir string, now time.Time) (string, error) {
	day := filepath.Join(dir, fmt.Sprintf("%d-%d-%d", now.Year(), int(now.Month()), now.Day()))
	if err := os.MkdirAll(day, 0o755); err != nil {
		return "", errors.Wrapf(err, "experiment: create %s", day)
	}
	entries, err := os.ReadDir(day)
	if err != nil {
		return "", errors.Wrapf(err, "experiment: list %s", day)
	}
	return filepath.Join(day, fmt.Sprintf("results_%d.csv", len(entries))), nil
}
