package experiment

import (
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/YuminosukeSato/lowrank/pkg/errors"
)

// Summary is the best row of one method, chosen by validation RMSE.
type Summary struct {
	Method string
	Best   Result
	Rows   int
}

// Summarize picks, for each method, the row with the lowest validation RMSE.
// Methods are returned in name order; ties keep the earliest row.
func Summarize(results []Result) []Summary {
	groups := lo.GroupBy(results, func(r Result) string { return r.Method })
	methods := lo.Keys(groups)
	slices.Sort(methods)
	return lo.Map(methods, func(m string, _ int) Summary {
		rows := groups[m]
		best := lo.MinBy(rows, func(a, b Result) bool {
			return a.RMSEValidation < b.RMSEValidation
		})
		return Summary{Method: m, Best: best, Rows: len(rows)}
	})
}

// RenderSummary writes summaries as a table.
func RenderSummary(w io.Writer, summaries []Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Method", "Rank", "Lambda", "RMSE_va", "RMSE", "evar", "Rows")
	for _, s := range summaries {
		err := table.Append([]string{
			s.Method,
			strconv.Itoa(s.Best.Rank),
			formatFloat(s.Best.Lambda),
			strconv.FormatFloat(s.Best.RMSEValidation, 'f', 6, 64),
			strconv.FormatFloat(s.Best.RMSETest, 'f', 6, 64),
			strconv.FormatFloat(s.Best.EvarTest, 'f', 4, 64),
			strconv.Itoa(s.Rows),
		})
		if err != nil {
			return errors.Wrap(err, "experiment: render summary")
		}
	}
	return errors.Wrap(table.Render(), "experiment: render summary")
}
