package experiment

import (
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Curve is the test RMSE of one method as a function of rank.
type Curve struct {
	Method string
	Ranks  []int
	RMSE   []float64
}

type curveKey struct {
	method string
	rank   int
	lambda float64
}

// RMSECurves averages rows over iterations, picks for every (method, rank)
// the lambda with the lowest mean validation RMSE (the smaller lambda on
// ties), and reports the mean test RMSE at that lambda. Curves are ordered
// by method name, points by rank.
func RMSECurves(results []Result) []Curve {
	groups := lo.GroupBy(results, func(r Result) curveKey {
		return curveKey{r.Method, r.Rank, r.Lambda}
	})

	type point struct {
		lambda   float64
		val, tst float64
	}
	best := map[string]map[int]point{}
	for k, rows := range groups {
		p := point{
			lambda: k.lambda,
			val:    stat.Mean(lo.Map(rows, func(r Result, _ int) float64 { return r.RMSEValidation }), nil),
			tst:    stat.Mean(lo.Map(rows, func(r Result, _ int) float64 { return r.RMSETest }), nil),
		}
		if best[k.method] == nil {
			best[k.method] = map[int]point{}
		}
		cur, ok := best[k.method][k.rank]
		if !ok || p.val < cur.val || (p.val == cur.val && p.lambda < cur.lambda) {
			best[k.method][k.rank] = p
		}
	}

	methods := lo.Keys(best)
	slices.Sort(methods)
	return lo.Map(methods, func(m string, _ int) Curve {
		ranks := lo.Keys(best[m])
		slices.Sort(ranks)
		return Curve{
			Method: m,
			Ranks:  ranks,
			RMSE:   lo.Map(ranks, func(r int, _ int) float64 { return best[m][r].tst }),
		}
	})
}

// PlotCurves renders the curves as lines with points and saves the image to
// path. The format follows the file extension, e.g. .png or .svg.
func PlotCurves(curves []Curve, title, path string) error {
	if len(curves) == 0 {
		return errors.NewModelError("experiment.PlotCurves", "no curves", errors.ErrEmptyData)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "rank"
	p.Y.Label.Text = "test RMSE"
	p.Legend.Top = true

	vs := make([]interface{}, 0, 2*len(curves))
	for _, c := range curves {
		pts := make(plotter.XYs, len(c.Ranks))
		for i := range c.Ranks {
			pts[i].X = float64(c.Ranks[i])
			pts[i].Y = c.RMSE[i]
		}
		vs = append(vs, c.Method, pts)
	}
	if err := plotutil.AddLinePoints(p, vs...); err != nil {
		return errors.Wrap(err, "experiment: plot curves")
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "experiment: save plot %s", path)
	}
	return nil
}
