// Package correlation relates every numeric daily metric to the survey
// scores with a Pearson r and an approximate significance flag.
//
// Significance is the rough two-tailed check |t| > threshold with
// t = r*sqrt((n-2)/(1-r^2)); it is not a p-value.
package correlation

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/okian/workpulse/internal/domain/model"
)

// DefaultThreshold is the |t| cut-off for High significance.
const DefaultThreshold = 2.0

// unitTolerance snaps |r| this close to 1 onto 1 so perfect linear relations
// get an infinite t despite rounding.
const unitTolerance = 1e-12

// Engine computes correlation results for a table.
type Engine struct {
	threshold float64
	targets   []string
}

// New creates an Engine with the default threshold and the survey targets.
func New(opts ...Option) *Engine {
	e := &Engine{
		threshold: DefaultThreshold,
		targets:   model.Targets,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured |t| cut-off.
func (e *Engine) Threshold() float64 { return e.threshold }

// Compute correlates every table column against every target column present
// in the table, target by target in order, skipping a column against itself.
func (e *Engine) Compute(ctx context.Context, table model.Table) ([]model.CorrelationResult, error) {
	var out []model.CorrelationResult
	for _, target := range e.targets {
		ty, ok := table.Column(target)
		if !ok {
			continue
		}
		for _, variable := range table.Columns {
			if variable == target {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tx, _ := table.Column(variable)
			out = append(out, e.Result(variable, target, tx, ty))
		}
	}
	return out, nil
}

// Result correlates x with y over the rows where both are present.
func (e *Engine) Result(variable, target string, x, y []model.Value) model.CorrelationResult {
	r, n := Pearson(x, y)
	res := model.CorrelationResult{
		Variable:     variable,
		Target:       target,
		R:            r,
		N:            n,
		Significance: model.SignificanceLow,
	}
	if !r.Valid {
		return res
	}
	res.TStat = model.Some(TStat(r.Float, n))
	if math.Abs(res.TStat.Float) > e.threshold {
		res.Significance = model.SignificanceHigh
	}
	return res
}

// Pearson returns r over the pairwise-complete rows of x and y and the number
// of rows used. r is missing when fewer than two rows remain or either side
// is constant.
func Pearson(x, y []model.Value) (model.Value, int) {
	var xs, ys stats.Float64Data
	for i := 0; i < len(x) && i < len(y); i++ {
		if x[i].Valid && y[i].Valid && !math.IsInf(x[i].Float, 0) && !math.IsInf(y[i].Float, 0) {
			xs = append(xs, x[i].Float)
			ys = append(ys, y[i].Float)
		}
	}
	n := len(xs)
	if n < 2 {
		return model.Missing(), n
	}
	sx, err := stats.StandardDeviationPopulation(xs)
	if err != nil || sx == 0 {
		return model.Missing(), n
	}
	sy, err := stats.StandardDeviationPopulation(ys)
	if err != nil || sy == 0 {
		return model.Missing(), n
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return model.Missing(), n
	}
	switch {
	case r >= 1-unitTolerance:
		r = 1
	case r <= -1+unitTolerance:
		r = -1
	}
	return model.Some(r), n
}

// TStat returns r*sqrt((n-2)/(1-r^2)), or a signed infinity when |r| is 1.
func TStat(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return math.Copysign(math.Inf(1), r)
	}
	return r * math.Sqrt(float64(n-2)/(1-r*r))
}

// Consolidate groups results by variable, one cell per target. When the
// same (variable, target) pair appears twice the first result is kept and
// the repeat is counted in the returned duplicate total. Rows are sorted by
// variable name.
func Consolidate(results []model.CorrelationResult) ([]model.CorrelationRow, int) {
	byVar := make(map[string]*model.CorrelationRow)
	dups := 0
	for _, r := range results {
		row := byVar[r.Variable]
		if row == nil {
			row = &model.CorrelationRow{Variable: r.Variable, Targets: map[string]model.CorrelationResult{}}
			byVar[r.Variable] = row
		}
		if _, seen := row.Targets[r.Target]; seen {
			dups++
			continue
		}
		row.Targets[r.Target] = r
	}

	out := make([]model.CorrelationRow, 0, len(byVar))
	for _, row := range byVar {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variable < out[j].Variable })
	return out, dups
}

// Significant returns the results against target with |r| >= minAbsR and
// High significance, strongest first.
func Significant(rows []model.CorrelationRow, target string, minAbsR float64) []model.CorrelationResult {
	var out []model.CorrelationResult
	for _, row := range rows {
		res, ok := row.Targets[target]
		if !ok || !res.R.Valid || res.Significance != model.SignificanceHigh {
			continue
		}
		if math.Abs(res.R.Float) >= minAbsR {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].R.Float) > math.Abs(out[j].R.Float)
	})
	return out
}

// Matrix correlates each of rows against each of cols. Names absent from the
// table yield missing cells.
func Matrix(table model.Table, rows, cols []string) [][]model.Value {
	out := make([][]model.Value, len(rows))
	for i, rn := range rows {
		out[i] = make([]model.Value, len(cols))
		x, ok := table.Column(rn)
		if !ok {
			continue
		}
		for j, cn := range cols {
			y, ok := table.Column(cn)
			if !ok {
				continue
			}
			out[i][j], _ = Pearson(x, y)
		}
	}
	return out
}
